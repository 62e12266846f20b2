// Package csvproc processes property-listing CSV documents: download, parse,
// filter, and reply with the matches.
package csvproc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/joshdias/zaprouter/pkg/workerpool"
	"github.com/joshdias/zaprouter/pkg/zapi"
	"github.com/rs/zerolog/log"
)

// The CSV starts with title and header rows before the data.
const dataStartLine = 4

// separator used by the source document instead of commas.
const separator = ";"

// Gateway is the messaging surface the service notifies through.
type Gateway interface {
	SendMessage(ctx context.Context, phone, message string, opts zapi.SendOptions) bool
}

// ServiceOptions configures the background CSV service.
type ServiceOptions struct {
	Workers     int                // pool workers (default: 5)
	QueueSize   int                // pool queue capacity (default: 100)
	Filter      Filter             // listing filter (default: DefaultFilter)
	PoolMetrics workerpool.Metrics // optional pool event sink
}

// Service processes CSV requests on a private bounded worker pool and
// reports outcomes through the gateway.
type Service struct {
	gateway    Gateway
	pool       *workerpool.Pool
	filter     Filter
	httpClient *http.Client
}

// NewService creates and starts the CSV processing service.
func NewService(gateway Gateway, options ServiceOptions) *Service {
	filter := options.Filter
	if filter.City == "" && filter.DescriptionContains == "" && len(filter.SaleModes) == 0 {
		filter = DefaultFilter()
	}

	return &Service{
		gateway: gateway,
		pool: workerpool.New("csv-processing", workerpool.Options{
			Workers:   options.Workers,
			QueueSize: options.QueueSize,
			Overflow:  workerpool.CallerRuns,
			Metrics:   options.PoolMetrics,
		}),
		filter:     filter,
		httpClient: http.DefaultClient,
	}
}

// ProcessAsync schedules a request on the pool and returns immediately.
func (s *Service) ProcessAsync(req Request) {
	log.Info().Str("phone", req.PhoneNumber).Msg("Submitting async CSV processing request")
	s.pool.Submit(func() {
		s.Process(req)
	})
}

// Process runs a request inline: download, parse, filter, notify.
func (s *Service) Process(req Request) Result {
	ctx := context.Background()

	log.Info().Str("phone", req.PhoneNumber).Msg("Processing CSV")

	content, err := s.download(ctx, req.DocumentURL)
	if err != nil {
		log.Error().Err(err).Msg("Error downloading CSV")
		return s.fail(ctx, req, fmt.Sprintf("Error processing CSV: %v", err))
	}

	listings := Parse(content)
	filtered := ApplyFilter(listings, s.filter)

	s.gateway.SendMessage(ctx, req.PhoneNumber, formatListings(filtered), zapi.SendOptions{})

	return Result{
		PhoneNumber: req.PhoneNumber,
		Listings:    filtered,
		Success:     true,
	}
}

// fail notifies the sender about a processing error and returns the result.
func (s *Service) fail(ctx context.Context, req Request, message string) Result {
	s.gateway.SendMessage(ctx, req.PhoneNumber, "*Error:* "+message, zapi.SendOptions{ReferenceID: req.MessageID})
	return Result{
		PhoneNumber:  req.PhoneNumber,
		ErrorMessage: message,
		Success:      false,
	}
}

// download fetches the CSV document as a string.
func (s *Service) download(ctx context.Context, url string) (string, error) {
	log.Info().Str("url", url).Msg("Downloading CSV file")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read CSV body: %w", err)
	}

	return string(body), nil
}

// Parse converts the semicolon-separated document into listings, skipping
// the title and header preamble and any row without enough columns.
func Parse(content string) []Listing {
	lines := strings.Split(content, "\n")

	var listings []Listing
	for i := dataStartLine; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		values := strings.Split(line, separator)
		if len(values) < 2 {
			log.Warn().Str("line", line).Msg("Skipping CSV line with insufficient data")
			continue
		}

		listings = append(listings, listingFromColumns(values))
	}

	return listings
}

// listingFromColumns maps positional columns to listing fields.
func listingFromColumns(values []string) Listing {
	column := func(i int) string {
		if i >= len(values) {
			return ""
		}
		return strings.TrimSpace(values[i])
	}

	return Listing{
		Number:         column(0),
		State:          column(1),
		City:           column(2),
		District:       column(3),
		Address:        column(4),
		Price:          column(5),
		AppraisalValue: column(6),
		Discount:       column(7),
		Description:    column(8),
		SaleMode:       column(9),
		AccessLink:     column(10),
	}
}

// ApplyFilter keeps listings matching all configured criteria.
func ApplyFilter(listings []Listing, filter Filter) []Listing {
	var filtered []Listing
	for _, listing := range listings {
		if filter.City != "" && listing.City != filter.City {
			continue
		}
		if filter.DescriptionContains != "" && !strings.Contains(listing.Description, filter.DescriptionContains) {
			continue
		}
		if len(filter.SaleModes) > 0 && !matchesSaleMode(listing.SaleMode, filter.SaleModes) {
			continue
		}
		filtered = append(filtered, listing)
	}
	return filtered
}

func matchesSaleMode(saleMode string, modes []string) bool {
	for _, mode := range modes {
		if strings.Contains(saleMode, mode) {
			return true
		}
	}
	return false
}

// formatListings renders the filtered listings as a chat message.
func formatListings(listings []Listing) string {
	if len(listings) == 0 {
		return "Nenhum imóvel encontrado com os critérios especificados."
	}

	var b strings.Builder
	b.WriteString("*Imóveis encontrados:*\n\n")
	for _, l := range listings {
		fmt.Fprintf(&b, "*Número do Imóvel:* %s\n", l.Number)
		fmt.Fprintf(&b, "*Cidade:* %s\n", l.City)
		fmt.Fprintf(&b, "*Bairro:* %s\n", l.District)
		fmt.Fprintf(&b, "*Endereço:* %s\n", l.Address)
		fmt.Fprintf(&b, "*Preço:* %s\n", l.Price)
		fmt.Fprintf(&b, "*Valor de Avaliação:* %s\n", l.AppraisalValue)
		fmt.Fprintf(&b, "*Desconto:* %s\n", l.Discount)
		fmt.Fprintf(&b, "*Descrição:* %s\n", l.Description)
		fmt.Fprintf(&b, "*Modalidade de Venda:* %s\n", l.SaleMode)
		fmt.Fprintf(&b, "*Link de Acesso:* %s\n\n", l.AccessLink)
		b.WriteString("----------------------------\n\n")
	}
	return b.String()
}

// Stats returns the worker pool state.
func (s *Service) Stats() workerpool.Stats {
	return s.pool.Stats()
}

// Close drains the worker pool.
func (s *Service) Close(timeout time.Duration) bool {
	log.Info().Msg("Shutting down CSV processing service")
	return s.pool.Close(timeout)
}
