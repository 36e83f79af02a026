package web

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/evdash/internal/core"
	"github.com/JonMunkholm/evdash/internal/logging"
)

const viewIDKey = "view_id"

// tableView returns the session's TableView. A live session has its cookie
// re-issued so it expires only after SessionIdle without use. Without one,
// a view is created and the cookie set when create is true; otherwise a
// transient view in the initial state is returned and nothing is stored.
// Must run before the response body is written.
func (s *Server) tableView(w http.ResponseWriter, r *http.Request, create bool) (*core.TableView, error) {
	// A cookie that fails to decode (rotated secret, tampering) still
	// yields a usable new session.
	sess, err := s.sessions.Get(r, s.opts.CookieName)
	if sess == nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if err != nil {
		logging.FromContext(r.Context()).Debug("discarding invalid session cookie", "error", err)
	}

	if id, ok := sess.Values[viewIDKey].(string); ok {
		if view, found := s.views.get(id); found {
			if err := sess.Save(r, w); err != nil {
				return nil, fmt.Errorf("refresh session: %w", err)
			}
			return view, nil
		}
	}

	if !create {
		return core.NewTableView(s.records, s.opts.PageSize), nil
	}

	id, view := s.views.create()
	sess.Values[viewIDKey] = id
	if err := sess.Save(r, w); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	logging.WithFields(r.Context(), "view_id", id).Debug("table view created")
	return view, nil
}
