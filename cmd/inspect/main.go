package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/care-controller/internal/state"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to care_state.db")
	last := flag.Int("last", 20, "show N most recent records")
	tenant := flag.String("tenant", "", "entity tenant for --history")
	entityType := flag.String("type", "", "entity type for --history")
	entityID := flag.String("id", "", "entity id for --history")
	suggestions := flag.Bool("suggestions", false, "list recent suggestions instead of states")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/care_state.db [--last N] [--tenant T --type E --id I] [--suggestions] [--json]")
		os.Exit(2)
	}

	store, err := state.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *tenant != "" && *entityType != "" && *entityID != "":
		ref := state.EntityRef{TenantID: *tenant, EntityType: *entityType, EntityID: *entityID}
		err = runHistoryMode(store, ref, *jsonOut)
	case *suggestions:
		err = runSuggestionMode(store, *last, *jsonOut)
	default:
		err = runStateMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region state-mode

func runStateMode(store *state.Store, limit int, jsonOut bool) error {
	records, err := store.ListStates(limit)
	if err != nil {
		return err
	}
	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(records)
	}
	fmt.Printf("%-12s %-10s %-16s %-12s %s\n", "TENANT", "TYPE", "ENTITY", "STATE", "UPDATED")
	for _, rec := range records {
		fmt.Printf("%-12s %-10s %-16s %-12s %s\n",
			rec.Ref.TenantID, rec.Ref.EntityType, rec.Ref.EntityID,
			rec.CurrentState, rec.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// #endregion state-mode

// #region history-mode

func runHistoryMode(store *state.Store, ref state.EntityRef, jsonOut bool) error {
	entries, err := store.History(ref)
	if err != nil {
		return err
	}
	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(entries)
	}
	fmt.Printf("%-5s %-12s %-12s %-14s %s\n", "ID", "FROM", "TO", "ACTOR", "REASON")
	for _, e := range entries {
		fmt.Printf("%-5d %-12s %-12s %-14s %s\n", e.ID, e.FromState, e.ToState, e.Actor, e.Reason)
	}
	return nil
}

// #endregion history-mode

// #region suggestion-mode

func runSuggestionMode(store *state.Store, limit int, jsonOut bool) error {
	sugs, err := store.ListSuggestions(limit)
	if err != nil {
		return err
	}
	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(sugs)
	}
	fmt.Printf("%-16s %-18s %-22s %-6s %s\n", "ENTITY", "TRIGGER", "OUTCOME", "CONF", "BODY")
	for _, s := range sugs {
		body := s.Body
		if len(body) > 48 {
			body = body[:45] + "..."
		}
		fmt.Printf("%-16s %-18s %-22s %-6.2f %s\n", s.Ref.EntityID, s.TriggerType, s.Outcome, s.Confidence, body)
	}
	return nil
}

// #endregion suggestion-mode
