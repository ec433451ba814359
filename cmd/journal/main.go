package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"detectreport/internal/config"
	"detectreport/internal/protocol"
	"detectreport/internal/repository/sqlite"
	"detectreport/internal/service/yolo"
)

func main() {
	dbPath := flag.String("db", "data/journal.db", "Journal database path")
	recent := flag.Int("recent", 20, "Number of recent detections to print")
	clearJournal := flag.Bool("clear", false, "Delete every journal entry")
	decode := flag.String("decode", "", "Decode a captured report frame file instead of reading the journal")
	flag.Parse()

	if *decode != "" {
		if err := decodeFrameFile(*decode); err != nil {
			log.Fatalf("Failed to decode %s: %v", *decode, err)
		}
		return
	}

	if _, err := os.Stat(*dbPath); os.IsNotExist(err) {
		log.Fatalf("Journal not found: %s", *dbPath)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repo := sqlite.NewJournalRepository(db)

	if *clearJournal {
		if err := repo.DeleteAll(); err != nil {
			log.Fatalf("Failed to clear journal: %v", err)
		}
		fmt.Printf("✅ Journal %s cleared\n", *dbPath)
		return
	}

	stats, err := repo.Stats()
	if err != nil {
		log.Fatalf("Failed to read stats: %v", err)
	}

	fmt.Printf("📊 Journal Statistics:\n")
	fmt.Printf("   Reported frames: %d\n", stats.Frames)
	fmt.Printf("   Detections: %d\n", stats.Detections)
	if stats.Frames > 0 {
		fmt.Printf("   From: %s\n", stats.FirstFrame.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("   To:   %s\n", stats.LastFrame.Local().Format("2006-01-02 15:04:05"))
	}

	labels := make([]string, 0, len(stats.PerLabel))
	for label := range stats.PerLabel {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool { return stats.PerLabel[labels[i]] > stats.PerLabel[labels[j]] })
	if len(labels) > 0 {
		fmt.Printf("   Per label:\n")
		for _, label := range labels {
			fmt.Printf("      - %s: %d\n", label, stats.PerLabel[label])
		}
	}

	if *recent <= 0 {
		return
	}

	detections, err := repo.Recent(*recent)
	if err != nil {
		log.Fatalf("Failed to read recent detections: %v", err)
	}

	fmt.Printf("\n🕒 Recent detections:\n")
	for _, det := range detections {
		fmt.Printf("   frame %-6d #%d %-16s %.2f  (%d,%d %dx%d)\n",
			det.FrameID, det.Seq, det.Label, det.Confidence, det.X, det.Y, det.Width, det.Height)
	}
}

// decodeFrameFile prints the detections carried by one raw report frame, as
// captured from the serial line or a UDP socket.
func decodeFrameFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	frame, err := protocol.DecodeFrame(data)
	if err != nil {
		return err
	}
	if frame.Cmd != protocol.CmdDetectResult {
		return fmt.Errorf("unexpected command 0x%02x", frame.Cmd)
	}

	batch, err := protocol.DecodeDetections(frame.Body)
	if err != nil {
		return err
	}

	labels, err := yolo.LoadLabelsOrDefault(config.Load().LabelsPath)
	if err != nil {
		return err
	}

	fmt.Printf("📦 Frame: cmd 0x%02x, flags 0x%02x, %d detections\n", frame.Cmd, frame.Flags, len(batch))
	for i, det := range batch {
		fmt.Printf("   #%d %-16s %.2f  (%d,%d %dx%d)\n",
			i, labels.LabelFor(det.ClassID), det.Score, det.X, det.Y, det.W, det.H)
	}
	return nil
}

