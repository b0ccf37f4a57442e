// Command lead-import bulk-loads customer circuit records from a CSV file
// into the remote store. The CSV must carry a header row using the same
// snake_case column names the directory API serves.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/CircuitDesk/circuitdesk-go/internal/domain/entities/directory"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/observability/logging"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/persistence/database"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/persistence/remote"
	"github.com/joho/godotenv"
)

func main() {
	filePath := flag.String("file", "", "path to the lead CSV file")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("Usage: lead-import -file <leads.csv>")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found -- config defaults will be used")
	}

	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	db, err := database.ConnectRemote(logger)
	if err != nil {
		log.Fatalf("Failed to connect to remote store: %v", err)
	}
	if db == nil {
		log.Fatal("REMOTE_DATABASE_URL is not configured; the importer requires a remote store")
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		log.Fatalf("Failed to prepare remote schema: %v", err)
	}

	gateway := remote.NewSQLLeadGateway(db, logger)

	imported, failed, err := importLeads(*filePath, gateway)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Import complete: %d leads imported, %d failed", imported, failed)
}

// importLeads streams the CSV and inserts one lead per row. Rows that fail to
// insert are logged and skipped so one bad record cannot abort a bulk load.
func importLeads(path string, gateway *remote.SQLLeadGateway) (imported, failed int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	if _, ok := columns["ckt"]; !ok {
		return 0, 0, fmt.Errorf("CSV header is missing the required ckt column")
	}

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, failed, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		lead := leadFromRecord(columns, record)
		if lead.Ckt == "" {
			log.Printf("Skipping line %d: empty ckt", line)
			failed++
			continue
		}

		if _, err := gateway.Insert(lead); err != nil {
			log.Printf("Skipping line %d (ckt %s): %v", line, lead.Ckt, err)
			failed++
			continue
		}
		imported++
	}

	return imported, failed, nil
}

func leadFromRecord(columns map[string]int, record []string) *directory.Lead {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}
	optional := func(name string) *string {
		v := field(name)
		if v == "" {
			return nil
		}
		return &v
	}

	return &directory.Lead{
		SrNo:            field("sr_no"),
		Ckt:             field("ckt"),
		CustName:        field("cust_name"),
		Address:         field("address"),
		EmailID:         field("email_id"),
		ContactName:     field("contact_name"),
		CommDate:        field("comm_date"),
		UsableIPAddress: field("usable_ip_address"),
		Backup:          field("backup"),
		Device:          field("device"),
		Bandwidth:       field("bandwidth"),
		Remarks:         field("remarks"),
		PopName:         optional("pop_name"),
		NasIP1:          optional("nas_ip_1"),
		SwitchIP1:       optional("switch_ip_1"),
		PortNo1:         optional("port_no_1"),
		VlanID1:         optional("vlan_id_1"),
		PrimaryPop:      optional("primary_pop"),
		PopName2:        optional("pop_name_2"),
		NasIP2:          optional("nas_ip_2"),
		SwitchIP2:       optional("switch_ip_2"),
		PortNo2:         optional("port_no_2"),
		VlanID2:         optional("vlan_id_2"),
		SubnetMask:      optional("subnet_mask"),
		Gateway:         optional("gateway"),
		SalesPerson:     optional("sales_person"),
		TestingFe:       optional("testing_fe"),
		Mrtg:            optional("mrtg"),
	}
}
