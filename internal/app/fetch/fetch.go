package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"audioscribe/internal/app/util/files"
)

// audioExtensions are the file extensions we accept from remote URLs.
var audioExtensions = []string{".mp3", ".m4a", ".wav", ".ogg", ".flac", ".webm", ".mp4"}

// Fetcher pulls audio referenced by web pages: podcast episode pages,
// show-note pages, anything that exposes its media in the markup.
type Fetcher struct {
	client *http.Client
	logger *zap.Logger
}

// PageAudio is what a page told us about its audio.
type PageAudio struct {
	// AudioURL is the resolved, absolute media URL.
	AudioURL string

	// Title is the page's best name for the episode.
	Title string
}

// New builds a Fetcher. A nil logger falls back to a no-op one.
func New(logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		client: &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

// FindAudio loads the page and looks for its audio, in priority order:
// <audio src>, then <audio><source src>, then the og:audio and
// twitter:player:stream meta tags. Relative URLs resolve against the
// page URL.
func (f *Fetcher) FindAudio(ctx context.Context, pageURL string) (*PageAudio, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %s: %w", pageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page %s: status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", pageURL, err)
	}

	rawAudio := ""
	if src, ok := doc.Find("audio[src]").First().Attr("src"); ok && src != "" {
		rawAudio = src
	} else if src, ok := doc.Find("audio source[src]").First().Attr("src"); ok && src != "" {
		rawAudio = src
	} else if content, ok := doc.Find(`meta[property="og:audio"]`).First().Attr("content"); ok && content != "" {
		rawAudio = content
	} else if content, ok := doc.Find(`meta[name="twitter:player:stream"]`).First().Attr("content"); ok && content != "" {
		rawAudio = content
	}
	if rawAudio == "" {
		return nil, fmt.Errorf("no audio found on page %s", pageURL)
	}

	ref, err := url.Parse(rawAudio)
	if err != nil {
		return nil, fmt.Errorf("invalid audio URL %s: %w", rawAudio, err)
	}
	resolved := base.ResolveReference(ref)

	title := ""
	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		title = strings.TrimSpace(content)
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(resolved.Path), filepath.Ext(resolved.Path))
	}

	return &PageAudio{AudioURL: resolved.String(), Title: title}, nil
}

// FetchToDir obtains the URL's audio and downloads it into dir. URLs that
// point straight at a media file are downloaded as-is; anything else is
// treated as a page and searched via FindAudio. Returns the local file path.
func (f *Fetcher) FetchToDir(ctx context.Context, pageURL, dir string) (string, error) {
	audio, err := f.resolveAudio(ctx, pageURL)
	if err != nil {
		return "", err
	}

	ext, err := audioFileExtension(audio.AudioURL)
	if err != nil {
		return "", err
	}

	if err := files.EnsureDir(dir); err != nil {
		return "", err
	}
	destPath := filepath.Join(dir, sanitizeFilename(audio.Title)+ext)

	f.logger.Info("downloading audio",
		zap.String("page", pageURL),
		zap.String("audio_url", audio.AudioURL),
		zap.String("dest", destPath))

	if err := f.download(ctx, audio.AudioURL, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

// resolveAudio treats URLs with an audio extension as the media itself and
// parses everything else as an HTML page.
func (f *Fetcher) resolveAudio(ctx context.Context, rawURL string) (*PageAudio, error) {
	if _, err := audioFileExtension(rawURL); err == nil {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("invalid audio URL %s: %w", rawURL, err)
		}
		title := strings.TrimSuffix(filepath.Base(parsed.Path), filepath.Ext(parsed.Path))
		return &PageAudio{AudioURL: rawURL, Title: title}, nil
	}
	return f.FindAudio(ctx, rawURL)
}

// download streams the remote file to destPath, skipping the transfer when
// the local copy already has the remote's size.
func (f *Fetcher) download(ctx context.Context, rawURL, destPath string) error {
	if info, err := os.Stat(destPath); err == nil {
		if remoteSize := f.remoteSize(ctx, rawURL); remoteSize > 0 && remoteSize == info.Size() {
			f.logger.Info("local file matches remote size, skipping download",
				zap.String("path", destPath))
			return nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", rawURL, resp.StatusCode)
	}

	// Write to a temp name first so a torn download never looks complete.
	tmpPath := destPath + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("download %s: %w", rawURL, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, destPath)
}

// remoteSize asks for the Content-Length via HEAD, 0 when unavailable.
func (f *Fetcher) remoteSize(ctx context.Context, rawURL string) int64 {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0
	}
	return resp.ContentLength
}

// audioFileExtension pulls a recognized audio extension off the URL path.
func audioFileExtension(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(parsed.Path))
	for _, supported := range audioExtensions {
		if ext == supported {
			return ext, nil
		}
	}
	return "", fmt.Errorf("unsupported audio extension %q in url %s", ext, rawURL)
}

// sanitizeFilename keeps titles path-safe.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", "\x00", "")
	cleaned := strings.TrimSpace(replacer.Replace(name))
	if cleaned == "" {
		return "episode"
	}
	return cleaned
}
