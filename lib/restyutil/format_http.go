package restyutil

import (
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/go-resty/resty/v2"
)

// writeHeaders writes one "<prefix>Key: Value" line per value, sorted by key
// so dumps of the same exchange diff cleanly.
func writeHeaders(out *strings.Builder, prefix string, headers http.Header) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		for _, v := range headers[k] {
			fmt.Fprintf(out, "%s%s: %s\n", prefix, k, v)
		}
	}
}

func requestBody(req *http.Request) string {
	if req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("(failed to get request body: %s)", err)
	}
	if body == nil {
		return ""
	}
	defer body.Close()
	readBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("(failed to read request body: %s)", err)
	}
	return string(readBody)
}

// formatHttpMessage renders an exchange the way curl -v does, request lines
// prefixed with "> " and response lines with "< ", followed by the body.
func formatHttpMessage(res *resty.Response) string {
	var out strings.Builder

	raw := res.Request.RawRequest
	fmt.Fprintf(&out, "> %s %s\n", res.Request.Method, res.Request.URL)
	writeHeaders(&out, "> ", raw.Header)
	if body := requestBody(raw); body != "" {
		fmt.Fprintf(&out, ">\n> %s\n", body)
	}
	out.WriteString("\n")

	fmt.Fprintf(&out, "< %s\n", res.Status())
	if location, err := res.RawResponse.Location(); err == nil {
		fmt.Fprintf(&out, "< (redirected to %s)\n", location)
	}
	writeHeaders(&out, "< ", res.Header())
	out.WriteString("\n")
	out.WriteString(res.String())
	return out.String()
}
