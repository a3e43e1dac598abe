package weather

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
)

func TestMetrics(t *testing.T) {
	Convey("Requests are counted by status", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, parisJSON)
		}))
		defer ts.Close()

		m := NewMetrics()
		httpClient := &http.Client{Transport: m.InstrumentRoundTripper(ts.Client().Transport)}
		c := NewClient("TESTKEY", httpClient, zap.NewNop())
		c.SetBaseURL(ts.URL)
		_, err := c.Current(context.Background(), "Paris", Metric)
		So(err, ShouldBeNil)

		So(testutil.ToFloat64(m.requests.WithLabelValues("200")), ShouldEqual, 1)
		So(testutil.CollectAndCount(m.duration), ShouldEqual, 1)

		path := filepath.Join(t.TempDir(), "shinyweather.prom")
		So(m.WriteTextfile(path), ShouldBeNil)
		data, err := ioutil.ReadFile(path)
		So(err, ShouldBeNil)
		So(string(data), ShouldContainSubstring, `shinyweather_api_requests_total{code="200"} 1`)
		So(string(data), ShouldContainSubstring, "shinyweather_api_request_duration_seconds_count")
	})
}
