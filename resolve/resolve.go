// Package resolve turns a declared media source into URLs the playback
// engine can open: direct streams, transcoded variants, and out-of-band
// subtitle deliveries served by the host media server.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nagare-player/nagare/auth"
	"github.com/nagare-player/nagare/key"
	"github.com/nagare-player/nagare/log"
	"github.com/nagare-player/nagare/media"
	"github.com/nagare-player/nagare/network"
	"github.com/spf13/viper"
)

// ErrNoServer reports that no media server base URL is configured.
var ErrNoServer = errors.New("resolve: media server url is not configured")

// Resolver builds playable URLs against a single media server.
type Resolver struct {
	BaseURL string
	Token   string
}

// New creates a resolver from the configured server URL and the keyring
// token. A missing token is tolerated; the server may be anonymous.
func New() (*Resolver, error) {
	base := strings.TrimRight(viper.GetString(key.ServerURL), "/")
	if base == "" {
		return nil, ErrNoServer
	}

	token, err := auth.GetToken()
	if err != nil {
		log.Debugf("no server token in keyring: %v", err)
		token = ""
	}

	return &Resolver{BaseURL: base, Token: token}, nil
}

// DirectStreamURL returns the URL serving the source container verbatim.
func (r *Resolver) DirectStreamURL(source media.Source) (string, error) {
	container := source.Container
	if container == "" {
		container = "mkv"
	}

	query := url.Values{}
	query.Set("Static", "true")
	query.Set("MediaSourceId", source.ID)
	if r.Token != "" {
		query.Set("api_key", r.Token)
	}

	return fmt.Sprintf("%s/Videos/%s/stream.%s?%s",
		r.BaseURL, url.PathEscape(source.ID), container, query.Encode()), nil
}

// TranscodeURL returns the URL of the server-side transcoded variant. The
// server usually declares a relative transcoding path on the source; when
// it does not, the standard HLS endpoint is derived.
func (r *Resolver) TranscodeURL(source media.Source) (string, error) {
	if source.TranscodingURL != "" {
		return r.absolute(source.TranscodingURL), nil
	}

	query := url.Values{}
	query.Set("MediaSourceId", source.ID)
	if r.Token != "" {
		query.Set("api_key", r.Token)
	}

	return fmt.Sprintf("%s/Videos/%s/master.m3u8?%s",
		r.BaseURL, url.PathEscape(source.ID), query.Encode()), nil
}

// SubtitleURL returns the out-of-band delivery URL for an external subtitle
// stream. A delivery URL declared by the server wins; otherwise the
// standard subtitle endpoint is derived from the stream index.
func (r *Resolver) SubtitleURL(source media.Source, stream media.Stream) (string, error) {
	if stream.DeliveryURL != "" {
		return r.absolute(stream.DeliveryURL), nil
	}

	codec := stream.Codec
	if codec == "" {
		codec = "vtt"
	}

	query := url.Values{}
	if r.Token != "" {
		query.Set("api_key", r.Token)
	}

	u := fmt.Sprintf("%s/Videos/%s/%s/Subtitles/%d/Stream.%s",
		r.BaseURL, url.PathEscape(source.ID), url.PathEscape(source.ID), stream.Index, codec)
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u, nil
}

// absolute resolves a server-declared path against the base URL; already
// absolute URLs pass through untouched.
func (r *Resolver) absolute(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return r.BaseURL + "/" + strings.TrimLeft(path, "/")
}

// Ping verifies the server is reachable.
func (r *Resolver) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/System/Info/Public", nil)
	if err != nil {
		return err
	}

	resp, err := network.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("resolve: server responded %s", resp.Status)
	}
	return nil
}
