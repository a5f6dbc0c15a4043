// Command generate produces paired ticket and recharge CSV fixtures for
// manual testing of the validator CLI.
//
// Usage:
//
//	go run generate.go -count=500 -output-dir=../generated -seed=42
//
// Roughly 70% of generated tickets are backed by an eligible recharge; the
// rest exercise the failure paths: missing account ids, tickets preceding
// any recharge, wrong draw dates, and contested recharges.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

const (
	timeLayout = "2006-01-02 15:04:05"
	dateLayout = "2006-01-02"
)

var platforms = []string{"web", "android", "ios"}

type recharge struct {
	platform   string
	accountID  string
	rechargeID string
	occurredAt time.Time
	amount     float64
}

type ticket struct {
	platform     string
	accountID    string
	ticketNumber string
	registeredAt time.Time
	drawDate     string
	status       string
}

func main() {
	var (
		count     = flag.Int("count", 200, "number of tickets to generate")
		outputDir = flag.String("output-dir", "../generated", "output directory")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "random seed")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	tickets, recharges := generate(rng, *count)

	ticketsPath := filepath.Join(*outputDir, "tickets.csv")
	rechargesPath := filepath.Join(*outputDir, "recharges.csv")

	if err := writeTickets(ticketsPath, tickets); err != nil {
		log.Fatalf("Failed to write tickets: %v", err)
	}
	if err := writeRecharges(rechargesPath, recharges); err != nil {
		log.Fatalf("Failed to write recharges: %v", err)
	}

	fmt.Printf("Generated %d tickets -> %s\n", len(tickets), ticketsPath)
	fmt.Printf("Generated %d recharges -> %s\n", len(recharges), rechargesPath)
}

func generate(rng *rand.Rand, count int) ([]ticket, []recharge) {
	var tickets []ticket
	var recharges []recharge

	// Mid-month weekday base keeps generated days clear of the holiday set.
	base := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

	for i := 0; i < count; i++ {
		platform := platforms[rng.Intn(len(platforms))]
		accountID := fmt.Sprintf("%010d", 1000000000+rng.Intn(500))
		day := base.AddDate(0, 0, rng.Intn(20))

		rechargedAt := day.Add(time.Duration(rng.Intn(10)) * time.Hour)
		registeredAt := rechargedAt.Add(time.Duration(1+rng.Intn(6)) * time.Hour)
		drawDate := rechargedAt.Format(dateLayout)

		entry := ticket{
			platform:     platform,
			accountID:    accountID,
			ticketNumber: fmt.Sprintf("TK%06d", i+1),
			registeredAt: registeredAt,
			drawDate:     drawDate,
		}

		switch bucket := rng.Float64(); {
		case bucket < 0.70:
			// Backed ticket: recharge earlier the same day, same draw date.
			recharges = append(recharges, recharge{
				platform:   platform,
				accountID:  accountID,
				rechargeID: fmt.Sprintf("RC%06d", len(recharges)+1),
				occurredAt: rechargedAt,
				amount:     float64(5+rng.Intn(50)) + 0.50,
			})

		case bucket < 0.78:
			// No recharge at all for this account on this platform.
			entry.accountID = fmt.Sprintf("%010d", 9000000000+rng.Intn(500))

		case bucket < 0.86:
			// Recharge exists but the ticket asks for an unrelated date.
			recharges = append(recharges, recharge{
				platform:   platform,
				accountID:  accountID,
				rechargeID: fmt.Sprintf("RC%06d", len(recharges)+1),
				occurredAt: rechargedAt,
				amount:     float64(5+rng.Intn(50)) + 0.50,
			})
			entry.drawDate = rechargedAt.AddDate(0, 0, 10).Format(dateLayout)

		case bucket < 0.92:
			// Ticket registered before the recharge arrived.
			recharges = append(recharges, recharge{
				platform:   platform,
				accountID:  accountID,
				rechargeID: fmt.Sprintf("RC%06d", len(recharges)+1),
				occurredAt: registeredAt.Add(2 * time.Hour),
				amount:     float64(5+rng.Intn(50)) + 0.50,
			})

		case bucket < 0.96:
			// Missing account id.
			entry.accountID = ""

		default:
			// Pre-set upstream verdict.
			entry.status = "valido"
		}

		tickets = append(tickets, entry)
	}

	return tickets, recharges
}

func writeTickets(path string, tickets []ticket) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{
		"platform", "account_id", "ticket_number", "registered_at", "draw_date", "status",
	}); err != nil {
		return err
	}

	for _, t := range tickets {
		if err := writer.Write([]string{
			t.platform,
			t.accountID,
			t.ticketNumber,
			t.registeredAt.Format(timeLayout),
			t.drawDate,
			t.status,
		}); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeRecharges(path string, recharges []recharge) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{
		"platform", "account_id", "recharge_id", "occurred_at", "amount",
	}); err != nil {
		return err
	}

	for _, r := range recharges {
		if err := writer.Write([]string{
			r.platform,
			r.accountID,
			r.rechargeID,
			r.occurredAt.Format(timeLayout),
			fmt.Sprintf("%.2f", r.amount),
		}); err != nil {
			return err
		}
	}

	return writer.Error()
}
