package ncbi

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

const (
	EutilsHost = "eutils.ncbi.nlm.nih.gov"
	BlastHost  = "blast.ncbi.nlm.nih.gov"

	eutilsPathPrefix = "/entrez/eutils/"
	blastPath        = "/blast/Blast.cgi"
)

// NoRID is the result substituted when a BLAST submission response carries
// no job identifier.
const NoRID = "No RID"

// ErrNotAllowed is returned for URLs outside the allowed services.
var ErrNotAllowed = errors.New("url is not an allowed NCBI service")

// Action identifies what a URL asks a service to do.
type Action string

const (
	ActionUnknown  Action = "unknown"
	ActionESearch  Action = "esearch"
	ActionEFetch   Action = "efetch"
	ActionESummary Action = "esummary"
	ActionBlastPut Action = "blast-put"
	ActionBlastGet Action = "blast-get"
)

// Classify reports the service action a URL targets.
func Classify(rawURL string) Action {
	u, err := url.Parse(Normalize(rawURL))
	if err != nil {
		return ActionUnknown
	}

	switch strings.ToLower(u.Hostname()) {
	case EutilsHost:
		return eutilsAction(u)
	case BlastHost:
		return blastAction(u)
	}
	return ActionUnknown
}

// endpointAction classifies u by path and query alone.
func endpointAction(u *url.URL) Action {
	if a := eutilsAction(u); a != ActionUnknown {
		return a
	}
	return blastAction(u)
}

func eutilsAction(u *url.URL) Action {
	if !strings.HasPrefix(u.Path, eutilsPathPrefix) {
		return ActionUnknown
	}
	switch strings.TrimPrefix(u.Path, eutilsPathPrefix) {
	case "esearch.fcgi":
		return ActionESearch
	case "efetch.fcgi":
		return ActionEFetch
	case "esummary.fcgi":
		return ActionESummary
	}
	return ActionUnknown
}

func blastAction(u *url.URL) Action {
	if u.Path != blastPath {
		return ActionUnknown
	}
	switch strings.ToLower(u.Query().Get("CMD")) {
	case "put":
		return ActionBlastPut
	case "get":
		return ActionBlastGet
	}
	return ActionUnknown
}

// Normalize trims a URL and encodes spaces as '+', the form models tend to
// write search terms in.
func Normalize(rawURL string) string {
	return strings.ReplaceAll(strings.TrimSpace(rawURL), " ", "+")
}

// Allowlist restricts fetches to a fixed set of hosts and to the
// E-utilities and BLAST endpoints on them.
type Allowlist struct {
	hosts []string
}

// DefaultAllowlist permits the E-utilities and BLAST hosts.
func DefaultAllowlist() *Allowlist {
	return NewAllowlist(EutilsHost, BlastHost)
}

// NewAllowlist permits exactly the given hosts (host or host:port).
func NewAllowlist(hosts ...string) *Allowlist {
	normalized := make([]string, 0, len(hosts))
	for _, h := range hosts {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(h)))
	}
	return &Allowlist{hosts: normalized}
}

// Check returns ErrNotAllowed unless rawURL is an http(s) URL on an allowed
// host whose path and command name a supported service action.
func (a *Allowlist) Check(rawURL string) error {
	u, err := url.Parse(Normalize(rawURL))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAllowed, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrNotAllowed, u.Scheme)
	}
	host := strings.ToLower(u.Host)
	if !slices.Contains(a.hosts, host) && !slices.Contains(a.hosts, strings.ToLower(u.Hostname())) {
		return fmt.Errorf("%w: host %q", ErrNotAllowed, u.Host)
	}
	if endpointAction(u) == ActionUnknown {
		return fmt.Errorf("%w: path %q", ErrNotAllowed, u.Path)
	}
	return nil
}

var ridPattern = regexp.MustCompile(`RID = (.*)\n`)

// ExtractRID returns the job identifier from a BLAST submission response,
// or NoRID when the response has none. Surrounding whitespace, including the
// '\r' of CRLF line endings, is dropped.
func ExtractRID(body string) string {
	m := ridPattern.FindStringSubmatch(body)
	if m == nil {
		return NoRID
	}
	return strings.TrimSpace(m[1])
}

// BlastResultURL builds the retrieval URL for a submitted BLAST job.
func BlastResultURL(rid string) string {
	return "https://" + BlastHost + blastPath + "?CMD=Get&FORMAT_TYPE=Text&RID=" + rid
}
