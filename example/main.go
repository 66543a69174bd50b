package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/chatflow"
	"github.com/meikuraledutech/chatflow/postgres"
)

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	// Wire up the postgres implementation behind the Store interface.
	var store chatflow.Store = postgres.New(pool)

	// 1. Create tables
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	// ── Build a flow in the editor ────────────────────────────────────
	ed := chatflow.NewEditor()
	ask := ed.AddNode(chatflow.Node{
		Kind:     chatflow.KindInput,
		Position: chatflow.Position{X: 300, Y: 100},
		Data:     chatflow.InputData{Prompt: "What can we help with?", InputType: chatflow.InputText},
	})
	route := ed.AddNode(chatflow.Node{
		Kind:     chatflow.KindCondition,
		Position: chatflow.Position{X: 500, Y: 100},
		Data:     chatflow.ConditionData{Label: "Topic", Conditions: []string{"billing", "support"}},
	})
	billing := ed.AddNode(chatflow.Node{
		Kind:     chatflow.KindMessage,
		Position: chatflow.Position{X: 700, Y: 50},
		Data:     chatflow.MessageData{Text: "Connecting you to billing."},
	})
	end := ed.AddNode(chatflow.Node{Kind: chatflow.KindEnd, Position: chatflow.Position{X: 900, Y: 100}})

	mustConnect(ed, chatflow.Edge{Source: chatflow.DefaultStartID, Target: ask})
	mustConnect(ed, chatflow.Edge{Source: ask, Target: route})
	mustConnect(ed, chatflow.Edge{Source: route, Target: billing, SourceHandle: chatflow.BranchHandle(0)})
	mustConnect(ed, chatflow.Edge{Source: billing, Target: end})

	// A second successor for the input node is refused.
	if _, err := ed.Connect(chatflow.Edge{Source: ask, Target: end}); errors.Is(err, chatflow.ErrSuccessorExists) {
		fmt.Println("rejected:", err)
	}

	// ── Validate ──────────────────────────────────────────────────────
	report := chatflow.Validate(ed.Snapshot())
	fmt.Printf("valid: %v\n", report.IsValid)
	for _, msg := range report.Errors {
		fmt.Println("  -", msg)
	}

	// The condition needs a second path; route the default branch to End.
	mustConnect(ed, chatflow.Edge{Source: route, Target: end, SourceHandle: chatflow.DefaultHandle})
	fmt.Printf("valid after fix: %v\n", chatflow.Validate(ed.Snapshot()).IsValid)

	// ── Save and load ─────────────────────────────────────────────────
	f := ed.Snapshot()
	f.ID = "support-triage"
	if err := store.SaveFlow(ctx, &f); err != nil {
		log.Fatalf("save: %v", err)
	}

	loaded, err := store.GetFlow(ctx, f.ID)
	if err != nil {
		log.Fatalf("get: %v", err)
	}
	fmt.Printf("loaded %s: %d nodes, %d edges\n", loaded.ID, len(loaded.Nodes), len(loaded.Edges))

	// ── Export ────────────────────────────────────────────────────────
	now := time.Now()
	doc, err := chatflow.Export(*loaded, now)
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	fmt.Println("writing", chatflow.FileName(now))
	if err := doc.Encode(os.Stdout); err != nil {
		log.Fatalf("encode: %v", err)
	}

	fmt.Println(chatflow.Mermaid(*loaded))

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteFlow(ctx, f.ID); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("flow deleted")
}

func mustConnect(ed *chatflow.Editor, e chatflow.Edge) {
	if _, err := ed.Connect(e); err != nil {
		log.Fatalf("connect: %v", err)
	}
}
