package profile

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// defaultBaseURL is the GitHub REST API root.
	defaultBaseURL = "https://api.github.com"

	// maxResponseSize limits any single response body (1MB). Profiles are
	// short text files; anything larger is not a profile.
	maxResponseSize = 1 << 20

	userAgent = "ferium-companion"
)

// Repo locates a directory in a GitHub repository.
type Repo struct {
	Owner string
	Name  string
	Path  string
}

// String renders the repository as owner/repo[/path].
func (r Repo) String() string {
	s := r.Owner + "/" + r.Name
	if r.Path != "" {
		s += "/" + strings.Trim(r.Path, "/")
	}
	return s
}

// RemoteFile is one file entry of a GitHub contents listing.
type RemoteFile struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// Fetcher downloads shared profiles from the GitHub contents API.
type Fetcher struct {
	client  *http.Client
	baseURL string
	token   string
	logger  *zap.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithBaseURL points the fetcher at a different API root.
func WithBaseURL(u string) FetcherOption {
	return func(f *Fetcher) {
		f.baseURL = strings.TrimRight(u, "/")
	}
}

// WithToken sets the bearer token sent to the API. Without it the
// anonymous rate limit applies.
func WithToken(token string) FetcherOption {
	return func(f *Fetcher) {
		f.token = token
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(logger *zap.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFetcher creates a fetcher with secure defaults. GITHUB_TOKEN is used
// when set.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		},
		baseURL: defaultBaseURL,
		token:   os.Getenv("GITHUB_TOKEN"),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// validateBaseURL allows HTTPS, and plain HTTP only for loopback hosts.
func validateBaseURL(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		return nil
	case "http":
		host := u.Hostname()
		if host == "localhost" || host == "127.0.0.1" || host == "::1" {
			return nil
		}
		return fmt.Errorf("HTTP is only allowed for localhost; use HTTPS for: %s", baseURL)
	default:
		return fmt.Errorf("unsupported URL scheme %q; use HTTPS", u.Scheme)
	}
}

// ListFiles returns the regular files in the repository directory. Nested
// directories are skipped.
func (f *Fetcher) ListFiles(ctx context.Context, repo Repo) ([]RemoteFile, error) {
	if repo.Owner == "" || repo.Name == "" {
		return nil, fmt.Errorf("repository owner and name are required")
	}
	if err := validateBaseURL(f.baseURL); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents", f.baseURL,
		url.PathEscape(repo.Owner), url.PathEscape(repo.Name))
	if p := strings.Trim(repo.Path, "/"); p != "" {
		endpoint += "/" + escapePath(p)
	}

	body, err := f.get(ctx, endpoint, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}

	var entries []RemoteFile
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parsing contents of %s: %w", repo, err)
	}

	files := make([]RemoteFile, 0, len(entries))
	for _, e := range entries {
		if e.Type == "file" && e.DownloadURL != "" {
			files = append(files, e)
		}
	}
	f.logger.Debug("listed remote profiles", zap.Stringer("repo", repo), zap.Int("files", len(files)))
	return files, nil
}

// FetchFile downloads the raw text of a listed file.
func (f *Fetcher) FetchFile(ctx context.Context, file RemoteFile) (string, error) {
	body, err := f.get(ctx, file.DownloadURL, "")
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", file.Path, err)
	}
	return string(body), nil
}

// FetchProfiles downloads every file in the repository directory and
// parses each into a profile named after the file.
func (f *Fetcher) FetchProfiles(ctx context.Context, repo Repo) ([]*Profile, error) {
	files, err := f.ListFiles(ctx, repo)
	if err != nil {
		return nil, err
	}

	profiles := make([]*Profile, 0, len(files))
	for _, file := range files {
		name := NameFromFile(file.Name)
		if err := ValidateName(name); err != nil {
			f.logger.Warn("skipping remote file", zap.String("file", file.Path), zap.Error(err))
			continue
		}
		text, err := f.FetchFile(ctx, file)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, Parse(name, SourceGitHub+":"+repo.Owner+"/"+repo.Name+"/"+file.Path, text))
	}
	return profiles, nil
}

// FetchProfile downloads a single named file from the repository
// directory. name may be given with or without its extension.
func (f *Fetcher) FetchProfile(ctx context.Context, repo Repo, name string) (*Profile, error) {
	files, err := f.ListFiles(ctx, repo)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if file.Name == name || NameFromFile(file.Name) == name {
			text, err := f.FetchFile(ctx, file)
			if err != nil {
				return nil, err
			}
			return Parse(NameFromFile(file.Name), SourceGitHub+":"+repo.Owner+"/"+repo.Name+"/"+file.Path, text), nil
		}
	}
	return nil, fmt.Errorf("%w: %s in %s", ErrNotFound, name, repo)
}

func (f *Fetcher) get(ctx context.Context, rawURL, accept string) ([]byte, error) {
	if err := validateBaseURL(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if len(body) > maxResponseSize {
		return nil, fmt.Errorf("response from %s exceeds %d bytes", req.URL.Host, maxResponseSize)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode)
	}
	return body, nil
}

// apiError maps a GitHub status code to a message without echoing the
// response body.
func apiError(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("GitHub API authentication failed (status 401): check GITHUB_TOKEN")
	case http.StatusForbidden, http.StatusTooManyRequests:
		return fmt.Errorf("GitHub API rate limit exceeded or access forbidden (status %d): consider setting GITHUB_TOKEN", statusCode)
	case http.StatusNotFound:
		return fmt.Errorf("GitHub repository or path not found (status 404)")
	case http.StatusServiceUnavailable:
		return fmt.Errorf("GitHub API temporarily unavailable (status 503): try again later")
	default:
		return fmt.Errorf("GitHub API error (status %d)", statusCode)
	}
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
