package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/angangwa/azure-speech-to-text/core/transcribe"
	"github.com/gorilla/websocket"
)

const (
	azureRealtimePath   = "/openai/realtime"
	azureAPIVersion     = "2024-10-01-preview"
	openAIRealtimeURL   = "wss://api.openai.com/v1/realtime"
	transcriptionIntent = "transcription"
)

// Credentials carry the connection parameters of one endpoint variant.
// Zero fields fall back to the environment: AZURE_OPENAI_GPT4O_API_KEY,
// AZURE_OPENAI_GPT4O_ENDPOINT and AZURE_OPENAI_GPT4O_DEPLOYMENT_ID for
// Azure, OPENAI_API_KEY for OpenAI.
type Credentials struct {
	// APIKey authenticates the session: api-key header on Azure, bearer
	// token on OpenAI.
	APIKey string
	// Endpoint is the Azure resource host (scheme optional). For OpenAI
	// it optionally overrides the default service URL.
	Endpoint string
	// Deployment is the Azure deployment id. Unused for OpenAI.
	Deployment string
}

func (c Credentials) withEnvFallback(provider transcribe.Provider) Credentials {
	switch provider {
	case transcribe.ProviderAzure:
		if c.APIKey == "" {
			c.APIKey = os.Getenv("AZURE_OPENAI_GPT4O_API_KEY")
		}
		if c.Endpoint == "" {
			c.Endpoint = os.Getenv("AZURE_OPENAI_GPT4O_ENDPOINT")
		}
		if c.Deployment == "" {
			c.Deployment = os.Getenv("AZURE_OPENAI_GPT4O_DEPLOYMENT_ID")
		}
	case transcribe.ProviderOpenAI:
		if c.APIKey == "" {
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	return c
}

// validate checks credential presence before any socket is opened, so
// configuration mistakes fail fast instead of as dial errors.
func (c Credentials) validate(provider transcribe.Provider) error {
	switch provider {
	case transcribe.ProviderAzure:
		if c.APIKey == "" || c.Endpoint == "" || c.Deployment == "" {
			return fmt.Errorf("%w: azure endpoint, deployment id and api key are all required", ErrInvalidEndpoint)
		}
	case transcribe.ProviderOpenAI:
		if c.APIKey == "" {
			return fmt.Errorf("%w: openai api key is required", ErrInvalidEndpoint)
		}
	}
	return nil
}

// splitEndpoint maps an endpoint given as https://, http://, wss://,
// ws:// or a bare host onto a websocket scheme and host.
func splitEndpoint(endpoint string) (scheme, host string) {
	scheme = "wss"
	host = strings.TrimSuffix(endpoint, "/")
	for _, prefix := range []struct {
		prefix string
		scheme string
	}{
		{"https://", "wss"},
		{"wss://", "wss"},
		{"http://", "ws"},
		{"ws://", "ws"},
	} {
		if rest, ok := strings.CutPrefix(host, prefix.prefix); ok {
			return prefix.scheme, rest
		}
	}
	return scheme, host
}

func (c Credentials) endpointURL(provider transcribe.Provider) (string, http.Header, error) {
	switch provider {
	case transcribe.ProviderOpenAI:
		base := openAIRealtimeURL
		if c.Endpoint != "" {
			scheme, host := splitEndpoint(c.Endpoint)
			base = scheme + "://" + host
		}
		header := http.Header{
			"Authorization": {"Bearer " + c.APIKey},
			"OpenAI-Beta":   {"realtime=v1"},
		}
		return base + "?intent=" + transcriptionIntent, header, nil

	case transcribe.ProviderAzure:
		scheme, host := splitEndpoint(c.Endpoint)
		if host == "" {
			return "", nil, fmt.Errorf("%w: empty azure endpoint host", ErrInvalidEndpoint)
		}
		query := url.Values{}
		query.Set("intent", transcriptionIntent)
		query.Set("deployment", c.Deployment)
		query.Set("api-version", azureAPIVersion)
		endpoint := url.URL{Scheme: scheme, Host: host, Path: azureRealtimePath, RawQuery: query.Encode()}
		return endpoint.String(), http.Header{"api-key": {c.APIKey}}, nil
	}

	return "", nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidEndpoint, provider)
}

func dialWebsocket(ctx context.Context, wsURL string, header http.Header) (*websocket.Conn, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, classifyDialError(err, resp)
	}
	return conn, nil
}

// classifyDialError folds handshake failures into the connect error
// taxonomy: 401/403 reject the credentials, other 4xx mark a bad
// endpoint or deployment, everything else is the network or the service
// being unreachable.
func classifyDialError(err error, resp *http.Response) error {
	if resp == nil {
		return fmt.Errorf("%w: %v", ErrNetworkUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: service returned %s", ErrAuthRejected, resp.Status)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: service returned %s", ErrInvalidEndpoint, resp.Status)
	default:
		return fmt.Errorf("%w: service returned %s: %v", ErrNetworkUnreachable, resp.Status, err)
	}
}
