package describe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/user-management/internal"
)

// ErrNoAbstract reports that the endpoint answered but knows no abstract for
// the term.
var ErrNoAbstract = internal.NewNotFoundError("no abstract found for term", internal.ErrCodeDescribeNotFound)

// SPARQLClient fetches the dbo:abstract of a term from a SPARQL endpoint.
type SPARQLClient struct {
	endpoint   string
	language   string
	httpClient *http.Client
}

func NewSPARQLClient(endpoint, language string, timeout time.Duration) *SPARQLClient {
	if language == "" {
		language = "en"
	}
	return &SPARQLClient{
		endpoint:   endpoint,
		language:   language,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

// Lookup queries the endpoint for the term's abstract in the configured
// language. The term is matched against rdfs:label.
func (c *SPARQLClient) Lookup(ctx context.Context, term string) (string, error) {
	query := fmt.Sprintf(
		`SELECT ?abstract WHERE { ?s rdfs:label %q@%s ; <http://dbpedia.org/ontology/abstract> ?abstract . FILTER (lang(?abstract) = %q) } LIMIT 1`,
		term, c.language, c.language)

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("describe endpoint: %w", err)
	}
	params := u.Query()
	params.Set("query", query)
	params.Set("format", "application/sparql-results+json")
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("describe lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("describe lookup: endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed sparqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("describe lookup: decode response: %w", err)
	}

	if len(parsed.Results.Bindings) == 0 {
		return "", ErrNoAbstract
	}
	binding, ok := parsed.Results.Bindings[0]["abstract"]
	if !ok || binding.Value == "" {
		return "", ErrNoAbstract
	}
	return binding.Value, nil
}
