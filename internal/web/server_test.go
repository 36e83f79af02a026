package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/evdash/internal/core"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testRecords() []core.Record {
	v := func(vin, mk, model, year, evType string, rng int64, county string) core.Record {
		return core.Record{
			core.FieldVIN:         vin,
			core.FieldMake:        mk,
			core.FieldModel:       model,
			core.FieldModelYear:   year,
			core.FieldVehicleType: evType,
			core.FieldRange:       rng,
			core.FieldCounty:      county,
		}
	}
	const bev = "Battery Electric Vehicle (BEV)"
	const phev = "Plug-in Hybrid Electric Vehicle (PHEV)"
	return []core.Record{
		v("5YJ3E1EA1K", "TESLA", "MODEL 3", "2019", bev, 220, "King"),
		v("1N4AZ0CP5D", "NISSAN", "LEAF", "2013", bev, 75, "Kitsap"),
		v("5YJSA1E2XF", "TESLA", "MODEL S", "2015", bev, 208, "King"),
		v("1G1RC6E44E", "CHEVROLET", "VOLT", "2014", phev, 38, "Snohomish"),
		v("5YJ3E1EB2J", "TESLA", "MODEL 3", "2018", bev, 215, "Thurston"),
		v("WBY1Z2C56F", "BMW", "I3", "2015", phev, 72, "King"),
		v("1N4BZ0CP0G", "NISSAN", "LEAF", "2016", bev, 84, "Yakima"),
		v("KNDCC3LG1L", "KIA", "NIRO", "2020", bev, 0, "King"),
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer(testRecords(), Options{
		PageSize:      3,
		SessionSecret: []byte(testSecret),
		EnableCSP:     true,
	})
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return s, ts
}

// newClient returns a client that keeps the session cookie between calls.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func do(t *testing.T, c *http.Client, method, target string, form url.Values, htmx bool) *http.Response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, target, body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func decodeView(t *testing.T, resp *http.Response) ViewResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v ViewResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func decodeError(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func rowVINs(v ViewResponse) []string {
	vins := make([]string, len(v.Rows))
	for i, r := range v.Rows {
		vins[i] = r.Text(core.FieldVIN)
	}
	return vins
}

func TestDashboard(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	resp := do(t, c, http.MethodGet, ts.URL+"/", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	body := readBody(t, resp)
	assert.Contains(t, body, "Electric Vehicle Dashboard")
	assert.Contains(t, body, "8 registered vehicles")
	for _, n := range []string{"year", "type", "range", "makemodel", "summary"} {
		assert.Contains(t, body, `src="/charts/`+n+`.svg"`)
	}
	assert.Contains(t, body, `id="vehicle-table"`)

	u, _ := url.Parse(ts.URL)
	cookies := c.Jar.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, defaultCookieName, cookies[0].Name)
}

func TestSecurityHeaders(t *testing.T) {
	_, ts := newTestServer(t)

	resp := do(t, newClient(t), http.MethodGet, ts.URL+"/api/summary", nil, false)

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", resp.Header.Get("Referrer-Policy"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "default-src 'self'")
}

func TestSummary(t *testing.T) {
	_, ts := newTestServer(t)

	resp := do(t, newClient(t), http.MethodGet, ts.URL+"/api/summary", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got core.Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))

	assert.Equal(t, 8, got.Total)
	assert.Equal(t, core.YearCount{Year: "2013", Count: 1}, got.ByYear[0])
	assert.Equal(t, []core.TypeCount{
		{Type: "Battery Electric Vehicle (BEV)", Count: 6},
		{Type: "Plug-in Hybrid Electric Vehicle (PHEV)", Count: 2},
	}, got.ByType)
	assert.Equal(t, core.MakeModelCount{MakeModel: "TESLA MODEL 3", Count: 2}, got.TopModels[0])
	require.NotNil(t, got.Range)
	assert.Equal(t, int64(0), got.Range.Min)
	assert.Equal(t, int64(220), got.Range.Max)
	assert.Equal(t, 114.0, got.Range.Average)
}

func TestView_Defaults(t *testing.T) {
	_, ts := newTestServer(t)

	v := decodeView(t, do(t, newClient(t), http.MethodGet, ts.URL+"/api/view", nil, false))

	assert.Equal(t, 8, v.TotalFiltered)
	assert.Equal(t, 0, v.Page)
	assert.Equal(t, 3, v.PageSize)
	assert.Equal(t, 3, v.TotalPages)
	assert.Equal(t, core.FieldVIN, v.SortKey)
	assert.Equal(t, core.SortAsc, v.SortDir)
	assert.Equal(t, core.ColumnNames(), v.Columns)
	assert.Equal(t, []string{"1G1RC6E44E", "1N4AZ0CP5D", "1N4BZ0CP0G"}, rowVINs(v))
}

func TestView_SessionPersistence(t *testing.T) {
	s, ts := newTestServer(t)
	c := newClient(t)

	v := decodeView(t, do(t, c, http.MethodPost, ts.URL+"/api/view/search", url.Values{"q": {"TESLA"}}, false))
	assert.Equal(t, "tesla", v.SearchQuery)
	assert.Equal(t, 3, v.TotalFiltered)

	v = decodeView(t, do(t, c, http.MethodGet, ts.URL+"/api/view", nil, false))
	assert.Equal(t, 3, v.TotalFiltered, "same session keeps its search")

	other := newClient(t)
	do(t, other, http.MethodGet, ts.URL+"/", nil, false)
	v = decodeView(t, do(t, other, http.MethodGet, ts.URL+"/api/view", nil, false))
	assert.Equal(t, 8, v.TotalFiltered, "new session starts fresh")

	assert.Equal(t, 2, s.views.len())
}

func TestView_InvalidCookieStartsNewSession(t *testing.T) {
	s, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: defaultCookieName, Value: "garbage"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Set-Cookie"))
	assert.Equal(t, 1, s.views.len())
}

func TestView_ReadsWithoutSessionStoreNothing(t *testing.T) {
	s, ts := newTestServer(t)

	v := decodeView(t, do(t, newClient(t), http.MethodGet, ts.URL+"/api/view", nil, false))
	assert.Equal(t, 8, v.TotalFiltered)
	assert.Equal(t, 0, v.Page)

	resp := do(t, newClient(t), http.MethodGet, ts.URL+"/api/export", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Set-Cookie"))
	lines := strings.Split(readBody(t, resp), "\n")
	assert.Len(t, lines, 9, "header plus every record")

	assert.Equal(t, 0, s.views.len())
}

func TestView_SessionSlidesWhileInUse(t *testing.T) {
	s := NewServer(testRecords(), Options{
		PageSize:      3,
		SessionSecret: []byte(testSecret),
		SessionIdle:   time.Second,
	})
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	c := newClient(t)

	v := decodeView(t, do(t, c, http.MethodPost, ts.URL+"/api/view/page/1", nil, false))
	require.Equal(t, 1, v.Page)

	// each read lands inside the idle window of the one before it, but the
	// last is well past one window after the session began
	for i := 0; i < 3; i++ {
		time.Sleep(600 * time.Millisecond)
		v = decodeView(t, do(t, c, http.MethodGet, ts.URL+"/api/view", nil, false))
		assert.Equal(t, 1, v.Page, "read %d lost the session", i)
	}
	assert.Equal(t, 1, s.views.len())
}

func TestView_SessionCookieReissuedOnUse(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	do(t, c, http.MethodGet, ts.URL+"/", nil, false)
	resp := do(t, c, http.MethodGet, ts.URL+"/api/view", nil, false)

	cookie := resp.Header.Get("Set-Cookie")
	assert.Contains(t, cookie, defaultCookieName+"=")
	assert.Contains(t, cookie, "Max-Age=1800")
}

func TestView_Sort(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	v := decodeView(t, do(t, c, http.MethodPost, ts.URL+"/api/view/sort/Year", nil, false))
	assert.Equal(t, core.FieldModelYear, v.SortKey)
	assert.Equal(t, core.SortAsc, v.SortDir)
	assert.Equal(t, "2013", v.Rows[0].Text(core.FieldModelYear))

	v = decodeView(t, do(t, c, http.MethodPost, ts.URL+"/api/view/sort/Year", nil, false))
	assert.Equal(t, core.SortDesc, v.SortDir)
	assert.Equal(t, "2020", v.Rows[0].Text(core.FieldModelYear))

	v = decodeView(t, do(t, c, http.MethodPost, ts.URL+"/api/view/sort/Range", nil, false))
	assert.Equal(t, core.FieldRange, v.SortKey)
	assert.Equal(t, core.SortAsc, v.SortDir)
	assert.Equal(t, "KNDCC3LG1L", v.Rows[0].Text(core.FieldVIN))
}

func TestView_SortUnknownColumn(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	resp := do(t, c, http.MethodPost, ts.URL+"/api/view/sort/Color", nil, false)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "VIEW001", decodeError(t, resp).Code)

	v := decodeView(t, do(t, c, http.MethodGet, ts.URL+"/api/view", nil, false))
	assert.Equal(t, core.FieldVIN, v.SortKey, "rejected sort leaves state unchanged")
}

func TestView_Page(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	v := decodeView(t, do(t, c, http.MethodPost, ts.URL+"/api/view/page/2", nil, false))
	assert.Equal(t, 2, v.Page)
	assert.Equal(t, []string{"KNDCC3LG1L", "WBY1Z2C56F"}, rowVINs(v))

	v = decodeView(t, do(t, c, http.MethodPost, ts.URL+"/api/view/page/9", nil, false))
	assert.Equal(t, 9, v.Page)
	assert.Empty(t, v.Rows)
}

func TestView_HugePageKeepsSessionUsable(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	v := decodeView(t, do(t, c, http.MethodPost, ts.URL+"/api/view/page/4611686018427387904", nil, false))
	assert.Equal(t, 1<<62, v.Page)
	assert.Empty(t, v.Rows)

	v = decodeView(t, do(t, c, http.MethodGet, ts.URL+"/api/view", nil, false))
	assert.Empty(t, v.Rows)
	assert.Equal(t, 8, v.TotalFiltered)

	resp := do(t, c, http.MethodGet, ts.URL+"/table", nil, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "No matching vehicles")
	assert.NotContains(t, body, ">Next<")

	resp = do(t, c, http.MethodGet, ts.URL+"/", nil, false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	v = decodeView(t, do(t, c, http.MethodPost, ts.URL+"/api/view/page/0", nil, false))
	assert.Len(t, v.Rows, 3)
}

func TestView_PageNotInteger(t *testing.T) {
	_, ts := newTestServer(t)

	resp := do(t, newClient(t), http.MethodPost, ts.URL+"/api/view/page/abc", nil, false)

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := decodeError(t, resp)
	assert.Equal(t, "VIEW002", e.Code)
	assert.Equal(t, "The page number is not a whole number", e.Message)
}

func TestView_FiltersAndReset(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	v := decodeView(t, do(t, c, http.MethodPost, ts.URL+"/api/view/filter/type",
		url.Values{"value": {"Plug-in Hybrid Electric Vehicle (PHEV)"}}, false))
	assert.Equal(t, 2, v.TotalFiltered)

	v = decodeView(t, do(t, c, http.MethodPost, ts.URL+"/api/view/filter/year", url.Values{"value": {"2015"}}, false))
	assert.Equal(t, 1, v.TotalFiltered)
	assert.Equal(t, []string{"WBY1Z2C56F"}, rowVINs(v))

	v = decodeView(t, do(t, c, http.MethodPost, ts.URL+"/api/view/filter/year", url.Values{"value": {""}}, false))
	assert.Equal(t, 2, v.TotalFiltered, "empty value clears the year filter")

	v = decodeView(t, do(t, c, http.MethodPost, ts.URL+"/api/view/reset", nil, false))
	assert.Equal(t, 8, v.TotalFiltered)
	assert.Empty(t, v.FilterType)
	assert.Empty(t, v.FilterYear)
	assert.Empty(t, v.SearchQuery)
}

func TestView_ToggleColumn(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	v := decodeView(t, do(t, c, http.MethodPost, ts.URL+"/api/view/columns/County/toggle", nil, false))
	assert.Equal(t, []string{"VIN", "Make", "Model", "Year", "Type", "Range"}, v.Columns)

	v = decodeView(t, do(t, c, http.MethodPost, ts.URL+"/api/view/columns/County/toggle", nil, false))
	assert.Equal(t, core.ColumnNames(), v.Columns)

	resp := do(t, c, http.MethodPost, ts.URL+"/api/view/columns/Color/toggle", nil, false)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "VIEW001", decodeError(t, resp).Code)
}

func TestExport(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	do(t, c, http.MethodPost, ts.URL+"/api/view/search", url.Values{"q": {"nissan"}}, false)
	// paging and hidden columns do not affect the export
	do(t, c, http.MethodPost, ts.URL+"/api/view/page/5", nil, false)
	do(t, c, http.MethodPost, ts.URL+"/api/view/columns/VIN/toggle", nil, false)

	resp := do(t, c, http.MethodGet, ts.URL+"/api/export", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, core.ExportContentType, resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="VehicleData.csv"`, resp.Header.Get("Content-Disposition"))

	want := strings.Join([]string{
		`"VIN","Make","Model","Year","Type","Range","County"`,
		`"1N4AZ0CP5D","NISSAN","LEAF","2013","Battery Electric Vehicle (BEV)","75","Kitsap"`,
		`"1N4BZ0CP0G","NISSAN","LEAF","2016","Battery Electric Vehicle (BEV)","84","Yakima"`,
	}, "\n")
	assert.Equal(t, want, readBody(t, resp))
}

func TestChart(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	for _, n := range []string{"year", "type", "range", "makemodel", "summary"} {
		t.Run(n, func(t *testing.T) {
			resp := do(t, c, http.MethodGet, ts.URL+"/charts/"+n+".svg", nil, false)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
			assert.Contains(t, readBody(t, resp), "<svg")
		})
	}
}

func TestChart_Unknown(t *testing.T) {
	_, ts := newTestServer(t)

	resp := do(t, newClient(t), http.MethodGet, ts.URL+"/charts/bogus.svg", nil, false)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "CHART001")
}

func TestHTMX_MutationReturnsPartial(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	resp := do(t, c, http.MethodPost, ts.URL+"/api/view/search", url.Values{"q": {"leaf"}}, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	body := readBody(t, resp)
	assert.True(t, strings.HasPrefix(body, `<section id="vehicle-table"`))
	assert.Contains(t, body, "1N4AZ0CP5D")
	assert.NotContains(t, body, "5YJ3E1EA1K")
	assert.Contains(t, body, `value="leaf"`)
}

func TestHTMX_ErrorRetargetsAlerts(t *testing.T) {
	_, ts := newTestServer(t)

	resp := do(t, newClient(t), http.MethodPost, ts.URL+"/api/view/sort/Color", nil, true)

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "#alerts", resp.Header.Get("HX-Retarget"))
	body := readBody(t, resp)
	assert.Contains(t, body, `role="alert"`)
	assert.Contains(t, body, "VIEW001")
}

func TestTable(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t)

	partial := readBody(t, do(t, c, http.MethodGet, ts.URL+"/table", nil, true))
	assert.True(t, strings.HasPrefix(partial, `<section id="vehicle-table"`))

	full := readBody(t, do(t, c, http.MethodGet, ts.URL+"/table", nil, false))
	assert.True(t, strings.HasPrefix(full, "<!doctype html>"))
}

func TestViewRegistry_Sweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	vr := newViewRegistry(testRecords(), 3, 30*time.Minute)
	vr.now = func() time.Time { return now }

	stale, _ := vr.create()
	now = now.Add(20 * time.Minute)
	fresh, _ := vr.create()

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, vr.sweep())

	_, ok := vr.get(stale)
	assert.False(t, ok)
	_, ok = vr.get(fresh)
	assert.True(t, ok)

	// get refreshed fresh; another 29 minutes keeps it alive
	now = now.Add(29 * time.Minute)
	assert.Equal(t, 0, vr.sweep())
	assert.Equal(t, 1, vr.len())
}

func TestViewRegistry_ViewsAreIndependent(t *testing.T) {
	vr := newViewRegistry(testRecords(), 3, time.Hour)

	_, a := vr.create()
	_, b := vr.create()
	a.SetSearch("tesla")

	assert.Equal(t, 3, a.View().TotalFiltered)
	assert.Equal(t, 8, b.View().TotalFiltered)
}
