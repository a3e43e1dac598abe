package main

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/hatstand/shinyweather/config"
	"github.com/hatstand/shinyweather/mocks"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const parisJSON = `{"coord":{"lon":2.3488,"lat":48.8534},` +
	`"weather":[{"id":800,"main":"Clear","description":"clear sky","icon":"01d"}],` +
	`"base":"stations","name":"Paris",` +
	`"wind":{"speed":4.12,"deg":250},` +
	`"main":{"temp":18.5,"feels_like":17.9,"temp_min":15.0,"temp_max":21.0,"pressure":1016,"humidity":62}}`

var testEnv config.LookupFunc = func(key string) (string, bool) {
	if key == config.APIKeyEnv {
		return "TESTKEY", true
	}
	return "", false
}

func newTestApp(stdout *bytes.Buffer) (*app, *observer.ObservedLogs) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	core, logs := observer.New(level)
	return &app{
		logger: zap.New(core),
		level:  level,
		stdout: stdout,
	}, logs
}

func TestRun(t *testing.T) {
	Convey("Prints the report", t, func() {
		var query string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.RawQuery
			fmt.Fprint(w, parisJSON)
		}))
		defer ts.Close()

		var stdout bytes.Buffer
		a, _ := newTestApp(&stdout)
		a.baseURL = ts.URL

		code := a.run(context.Background(), []string{"--city", "Paris", "--units", "metric"}, testEnv)
		So(code, ShouldEqual, exitOK)
		So(query, ShouldEqual, "q=Paris&appid=TESTKEY&units=metric")
		So(stdout.String(), ShouldContainSubstring, "Temperature : 18.5°C\n")
		So(stdout.String(), ShouldContainSubstring, "Min : 15°C   /  Max : 21°C\n")
		So(stdout.String(), ShouldContainSubstring, "Feels like : 17.9°C\n")
		So(stdout.String(), ShouldStartWith, "\n-----------------------\nParis\n---\n")
	})

	Convey("Writes metrics when asked", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, parisJSON)
		}))
		defer ts.Close()

		var stdout bytes.Buffer
		a, _ := newTestApp(&stdout)
		a.baseURL = ts.URL
		path := filepath.Join(t.TempDir(), "weather.prom")

		code := a.run(context.Background(), []string{"--city", "Paris", "--metrics-file", path}, testEnv)
		So(code, ShouldEqual, exitOK)
		data, err := ioutil.ReadFile(path)
		So(err, ShouldBeNil)
		So(string(data), ShouldContainSubstring, `shinyweather_api_requests_total{code="200"} 1`)
	})

	Convey("Verbose enables debug logs", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, parisJSON)
		}))
		defer ts.Close()

		var stdout bytes.Buffer
		a, logs := newTestApp(&stdout)
		a.baseURL = ts.URL

		code := a.run(context.Background(), []string{"--city", "Paris", "--verbose"}, testEnv)
		So(code, ShouldEqual, exitOK)
		So(a.level.Level(), ShouldEqual, zapcore.DebugLevel)
		So(logs.FilterMessage("Fetching current weather").Len(), ShouldEqual, 1)
	})

	Convey("API failure", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"cod":401,"message":"Invalid API key."}`)
		}))
		defer ts.Close()

		var stdout bytes.Buffer
		a, logs := newTestApp(&stdout)
		a.baseURL = ts.URL

		code := a.run(context.Background(), []string{"--city", "Paris"}, testEnv)
		So(code, ShouldEqual, exitFailure)
		So(stdout.Len(), ShouldEqual, 0)
		So(logs.FilterMessage("Failed to fetch weather").Len(), ShouldEqual, 1)
	})

	Convey("Malformed response", t, func() {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"name":"Paris","main":{"feels_like":1}}`)
		}))
		defer ts.Close()

		var stdout bytes.Buffer
		a, _ := newTestApp(&stdout)
		a.baseURL = ts.URL

		code := a.run(context.Background(), []string{"--city", "Paris"}, testEnv)
		So(code, ShouldEqual, exitFailure)
		So(stdout.Len(), ShouldEqual, 0)
	})
}

func WithMockTransport(t *testing.T, f func(rt *mocks.MockRoundTripper, a *app, logs *observer.ObservedLogs)) func() {
	return func() {
		mock := gomock.NewController(t)
		defer mock.Finish()
		rt := mocks.NewMockRoundTripper(mock)
		a, logs := newTestApp(&bytes.Buffer{})
		a.transport = rt
		f(rt, a, logs)
	}
}

func TestRunWithoutNetwork(t *testing.T) {
	Convey("Missing --city", t, WithMockTransport(t, func(rt *mocks.MockRoundTripper, a *app, logs *observer.ObservedLogs) {
		code := a.run(context.Background(), []string{"--units", "metric"}, testEnv)
		So(code, ShouldEqual, exitConfigError)
		So(logs.FilterMessage("Invalid configuration").Len(), ShouldEqual, 1)
	}))

	Convey("Missing API key", t, WithMockTransport(t, func(rt *mocks.MockRoundTripper, a *app, logs *observer.ObservedLogs) {
		noKey := func(string) (string, bool) { return "", false }
		code := a.run(context.Background(), []string{"--city", "Paris"}, noKey)
		So(code, ShouldEqual, exitConfigError)
	}))

	Convey("Bad units", t, WithMockTransport(t, func(rt *mocks.MockRoundTripper, a *app, logs *observer.ObservedLogs) {
		code := a.run(context.Background(), []string{"--city", "Paris", "--units", "kelvin"}, testEnv)
		So(code, ShouldEqual, exitConfigError)
	}))

	Convey("Transport failure", t, WithMockTransport(t, func(rt *mocks.MockRoundTripper, a *app, logs *observer.ObservedLogs) {
		rt.EXPECT().RoundTrip(gomock.Any()).Return(nil, errors.New("no such host")).Times(1)
		code := a.run(context.Background(), []string{"--city", "Paris"}, testEnv)
		So(code, ShouldEqual, exitFailure)
	}))
}
