package transport

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"

	"cryptorewards-backend/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
)

const report_fetch_dump = "fetch.dump"

// 1: request method
// 2: request url
// 3: request headers in ("Key: Value" format)
// 4: response status
// 5: strategy
// 6: response headers in ("Key: Value" format)
// 7: response body
const exchangeTemplate = `---- REQUEST ----

%s %s

%s

---- RESPONSE ----

%s (%s)

%s

%s`

func formatHeaders(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		for _, v := range headers[k] {
			lines = append(lines, fmt.Sprintf("%s: %s", k, v))
		}
	}
	return strings.Join(lines, "\n")
}

func formatExchange(res *resty.Response, strategy Strategy) string {
	var requestHeaders http.Header
	if res.Request.RawRequest != nil {
		requestHeaders = res.Request.RawRequest.Header
	}
	return fmt.Sprintf(
		exchangeTemplate,
		res.Request.Method, res.Request.URL,
		formatHeaders(requestHeaders),
		res.Status(), strategy,
		formatHeaders(res.Header()),
		res.String(),
	)
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9.-]+`)

// dumper writes every response it sees to its own file in a directory, the
// files are numbered in the order responses arrived.
type dumper struct {
	dir     string
	counter atomic.Uint64
	tel     telemetry.API
}

func newDumper(dir string, tel telemetry.API) (*dumper, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("create dump dir: %w", err)
	}
	return &dumper{dir: dir, tel: tel}, nil
}

func (d *dumper) filename(rawUrl string) string {
	id := d.counter.Add(1)
	name := rawUrl
	parsed, err := url.Parse(rawUrl)
	if err == nil {
		name = parsed.Host + parsed.Path
	}
	name = strings.Trim(unsafeFilename.ReplaceAllString(name, "_"), "_")
	return fmt.Sprintf("%04d-%s.txt", id, name)
}

func (d *dumper) write(res *resty.Response, strategy Strategy) {
	path := filepath.Join(d.dir, d.filename(res.Request.URL))
	err := os.WriteFile(path, []byte(formatExchange(res, strategy)), 0600)
	if err != nil {
		d.tel.ReportWarning(report_fetch_dump, path, err)
	}
}
