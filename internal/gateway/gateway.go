// Package gateway loads ticket and recharge collections from spreadsheet
// exports and serves them to the validation core.
//
// The gateway is deliberately forgiving about tickets and strict about
// recharges: a damaged ticket row still reaches the core, where it earns an
// INVALID verdict with a reason the report can show, while a damaged
// recharge row is dropped here because the core treats every loaded recharge
// as money that actually arrived.
package gateway

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"ticket-reconciliation-service/internal/models"
	"ticket-reconciliation-service/pkg/errors"
	"ticket-reconciliation-service/pkg/localtime"
	"ticket-reconciliation-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// Ticket file columns.
const (
	colPlatform     = "platform"
	colAccountID    = "account_id"
	colTicketNumber = "ticket_number"
	colRegisteredAt = "registered_at"
	colDrawDate     = "draw_date"
	colStatus       = "status"
)

// Recharge file columns.
const (
	colRechargeID = "recharge_id"
	colOccurredAt = "occurred_at"
	colAmount     = "amount"
)

// Config holds configuration options for the data gateway.
type Config struct {
	// TicketsFile is the path to the ticket registration export.
	TicketsFile string

	// RechargesFile is the path to the recharge export.
	RechargesFile string

	// HasHeader indicates whether the exports carry a header row.
	HasHeader bool

	// Delimiter is the CSV field delimiter.
	Delimiter rune

	// CacheTTL is how long a fetched collection stays served from cache.
	CacheTTL time.Duration
}

// DefaultConfig returns the default gateway configuration.
func DefaultConfig() *Config {
	return &Config{
		HasHeader: true,
		Delimiter: ',',
		CacheTTL:  5 * time.Minute,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TicketsFile) == "" {
		return fmt.Errorf("tickets file path cannot be empty")
	}
	if strings.TrimSpace(c.RechargesFile) == "" {
		return fmt.Errorf("recharges file path cannot be empty")
	}
	if c.Delimiter == 0 {
		return fmt.Errorf("delimiter cannot be zero")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL cannot be negative, got %s", c.CacheTTL)
	}
	return nil
}

// FetchStats summarizes one load of a collection.
type FetchStats struct {
	TotalRows   int
	Loaded      int
	Dropped     int
	FromCache   bool
	Fingerprint string
}

// Gateway fetches ticket and recharge collections with per-collection
// TTL caching.
type Gateway struct {
	config        *Config
	logger        logger.Logger
	ticketCache   *resultCache
	rechargeCache *resultCache
}

// NewGateway creates a data gateway.
func NewGateway(config *Config) (*Gateway, error) {
	if config == nil {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, "gateway", nil)
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "gateway", err)
	}

	return &Gateway{
		config:        config,
		logger:        logger.GetGlobalLogger().WithComponent("gateway"),
		ticketCache:   newResultCache(config.CacheTTL),
		rechargeCache: newResultCache(config.CacheTTL),
	}, nil
}

// FetchEntries returns the ticket collection, served from cache when fresh.
func (g *Gateway) FetchEntries(ctx context.Context) ([]*models.TicketEntry, *FetchStats, error) {
	stats := &FetchStats{}

	value, hit, err := g.ticketCache.fetch(func() (interface{}, string, error) {
		tickets, loadStats, err := g.loadTickets(ctx)
		if err != nil {
			return nil, "", err
		}
		*stats = *loadStats
		return tickets, ticketFingerprint(tickets), nil
	})
	if err != nil {
		return nil, nil, err
	}

	tickets := value.([]*models.TicketEntry)
	if hit {
		stats.FromCache = true
		stats.Loaded = len(tickets)
		g.logger.WithFields(logger.Fields{
			"source":      g.config.TicketsFile,
			"fingerprint": g.ticketCache.currentFingerprint(),
		}).Debug("Serving tickets from cache")
	}
	stats.Fingerprint = ticketFingerprint(tickets)

	return tickets, stats, nil
}

// FetchRecharges returns the recharge collection, served from cache when
// fresh.
func (g *Gateway) FetchRecharges(ctx context.Context) ([]*models.RechargeEvent, *FetchStats, error) {
	stats := &FetchStats{}

	value, hit, err := g.rechargeCache.fetch(func() (interface{}, string, error) {
		recharges, loadStats, err := g.loadRecharges(ctx)
		if err != nil {
			return nil, "", err
		}
		*stats = *loadStats
		return recharges, rechargeFingerprint(recharges), nil
	})
	if err != nil {
		return nil, nil, err
	}

	recharges := value.([]*models.RechargeEvent)
	if hit {
		stats.FromCache = true
		stats.Loaded = len(recharges)
		g.logger.WithFields(logger.Fields{
			"source": g.config.RechargesFile,
		}).Debug("Serving recharges from cache")
	}
	stats.Fingerprint = rechargeFingerprint(recharges)

	return recharges, stats, nil
}

// Invalidate drops both cached collections, forcing the next fetch to
// re-read the exports.
func (g *Gateway) Invalidate() {
	g.ticketCache.invalidate()
	g.rechargeCache.invalidate()
	g.logger.Debug("Gateway caches invalidated")
}

func (g *Gateway) loadTickets(ctx context.Context) ([]*models.TicketEntry, *FetchStats, error) {
	g.logger.WithField("source", g.config.TicketsFile).Info("Loading tickets")

	file, reader, err := g.open(g.config.TicketsFile)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	columns, err := g.readHeader(reader, g.config.TicketsFile,
		[]string{colPlatform, colAccountID, colTicketNumber, colRegisteredAt, colDrawDate})
	if err != nil {
		return nil, nil, err
	}

	stats := &FetchStats{}
	var tickets []*models.TicketEntry
	line := 1

	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			stats.Dropped++
			g.logger.WithError(err).WithField("line", line).Debug("Dropping unreadable ticket row")
			continue
		}
		if isEmptyRecord(record) {
			continue
		}
		stats.TotalRows++

		ticket := models.NewTicketEntry(
			columns.get(record, colPlatform),
			columns.get(record, colAccountID),
			columns.get(record, colTicketNumber),
			time.Time{},
			columns.get(record, colDrawDate),
		)
		ticket.SourceStatus = columns.get(record, colStatus)

		// A missing or malformed registration time stays zero; the core
		// turns it into an INVALID verdict instead of losing the row.
		if raw := columns.get(record, colRegisteredAt); raw != "" {
			if registeredAt, err := localtime.Parse(raw); err == nil {
				ticket.RegisteredAt = registeredAt
			} else {
				g.logger.WithError(err).WithFields(logger.Fields{
					"line":   line,
					"ticket": ticket.TicketNumber,
				}).Debug("Unparseable ticket registration time")
			}
		}

		// Without a ticket number the row cannot be reported at all.
		if ticket.TicketNumber == "" {
			stats.Dropped++
			g.logger.WithField("line", line).Debug("Dropping ticket row without ticket number")
			continue
		}

		tickets = append(tickets, ticket)
		stats.Loaded++
	}

	g.logger.WithFields(logger.Fields{
		"source":  g.config.TicketsFile,
		"total":   stats.TotalRows,
		"loaded":  stats.Loaded,
		"dropped": stats.Dropped,
	}).Info("Ticket loading completed")

	return tickets, stats, nil
}

func (g *Gateway) loadRecharges(ctx context.Context) ([]*models.RechargeEvent, *FetchStats, error) {
	g.logger.WithField("source", g.config.RechargesFile).Info("Loading recharges")

	file, reader, err := g.open(g.config.RechargesFile)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	columns, err := g.readHeader(reader, g.config.RechargesFile,
		[]string{colPlatform, colAccountID, colRechargeID, colOccurredAt, colAmount})
	if err != nil {
		return nil, nil, err
	}

	stats := &FetchStats{}
	var recharges []*models.RechargeEvent
	line := 1

	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			stats.Dropped++
			g.logger.WithError(err).WithField("line", line).Debug("Dropping unreadable recharge row")
			continue
		}
		if isEmptyRecord(record) {
			continue
		}
		stats.TotalRows++

		recharge, err := g.parseRecharge(columns, record)
		if err != nil {
			stats.Dropped++
			g.logger.WithError(err).WithField("line", line).Debug("Dropping malformed recharge row")
			continue
		}

		recharges = append(recharges, recharge)
		stats.Loaded++
	}

	g.logger.WithFields(logger.Fields{
		"source":  g.config.RechargesFile,
		"total":   stats.TotalRows,
		"loaded":  stats.Loaded,
		"dropped": stats.Dropped,
	}).Info("Recharge loading completed")

	return recharges, stats, nil
}

func (g *Gateway) parseRecharge(columns columnIndex, record []string) (*models.RechargeEvent, error) {
	occurredAt, err := localtime.Parse(columns.get(record, colOccurredAt))
	if err != nil {
		return nil, fmt.Errorf("invalid recharge time: %w", err)
	}

	amount, err := decimal.NewFromString(columns.get(record, colAmount))
	if err != nil {
		return nil, fmt.Errorf("invalid recharge amount: %w", err)
	}

	recharge := models.NewRechargeEvent(
		columns.get(record, colPlatform),
		columns.get(record, colAccountID),
		columns.get(record, colRechargeID),
		occurredAt,
		amount,
	)

	if err := recharge.Validate(); err != nil {
		return nil, err
	}

	return recharge, nil
}

func (g *Gateway) open(path string) (*os.File, *csv.Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.GatewayError(errors.CodeFileNotFound, path, err)
		}
		return nil, nil, errors.GatewayError(errors.CodeFetchFailed, path, err)
	}

	reader := csv.NewReader(file)
	reader.Comma = g.config.Delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	return file, reader, nil
}

// columnIndex maps column names to record positions.
type columnIndex map[string]int

// get returns the trimmed field for a column, or empty when the column is
// absent or the row is short.
func (ci columnIndex) get(record []string, name string) string {
	index, ok := ci[name]
	if !ok || index >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[index])
}

func (g *Gateway) readHeader(reader *csv.Reader, path string, required []string) (columnIndex, error) {
	columns := make(columnIndex)

	if !g.config.HasHeader {
		for i, name := range required {
			columns[name] = i
		}
		// Status rides after the required ticket columns when present.
		columns[colStatus] = len(required)
		return columns, nil
	}

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.GatewayError(errors.CodeMalformedData, path,
				fmt.Errorf("file is empty"))
		}
		return nil, errors.GatewayError(errors.CodeMalformedData, path, err)
	}

	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.GatewayError(errors.CodeMalformedData, path,
			fmt.Errorf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	return columns, nil
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// ticketFingerprint derives an advisory identity for a ticket collection:
// row count plus first and last ticket numbers. It detects the common case
// of a re-exported sheet without hashing every row.
func ticketFingerprint(tickets []*models.TicketEntry) string {
	if len(tickets) == 0 {
		return "0"
	}
	return fmt.Sprintf("%d:%s:%s",
		len(tickets), tickets[0].TicketNumber, tickets[len(tickets)-1].TicketNumber)
}

func rechargeFingerprint(recharges []*models.RechargeEvent) string {
	if len(recharges) == 0 {
		return "0"
	}
	return fmt.Sprintf("%d:%s:%s",
		len(recharges), recharges[0].RechargeID, recharges[len(recharges)-1].RechargeID)
}
