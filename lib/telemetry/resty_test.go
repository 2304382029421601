package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
	})
	return recorder
}

func requestBodyAttr(span sdktrace.ReadOnlySpan) (string, bool) {
	for _, attr := range span.Attributes() {
		if attr.Key == attribute.Key("request/body") {
			return attr.Value.AsString(), true
		}
	}
	return "", false
}

func TestInstrumentResty(t *testing.T) {
	recorder := recordSpans(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<ul class="list"></ul>`))
	}))
	defer server.Close()

	client := resty.New()
	InstrumentResty(client, "test:telemetry")

	res, err := client.R().Get(server.URL + "/directory/149")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())

	res, err = client.R().
		SetFormData(map[string]string{"PARISH": "001", "FACTOR": "C"}).
		Post(server.URL + "/Main.jsp?MODULE=Calculation")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode())

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	_, ok := requestBodyAttr(spans[0])
	require.False(t, ok)

	body, ok := requestBodyAttr(spans[1])
	require.True(t, ok)
	require.Equal(t, "FACTOR=C&PARISH=001", body)
}
