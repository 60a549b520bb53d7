package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/taskgraph"
	"github.com/meikuraledutech/taskgraph/postgres"
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
	var store taskgraph.Store = postgres.New(pool)

	// 1. Create tables
	if err := store.CreateSchema(ctx); err != nil {
		log.Fatalf("schema: %v", err)
	}
	fmt.Println("schema created")

	// ── Build a graph from decomposition output ───────────────────────
	payload := []byte(`[
		{"id": 1, "description": "Fetch data", "depends_on": []},
		{"id": 2, "description": "Clean data", "depends_on": [1]},
		{"id": 3, "description": "Train model", "depends_on": [2]},
		{"id": 4, "description": "Evaluate model", "depends_on": [2]},
		{"id": 5, "description": "Deploy model", "depends_on": [3, 4]}
	]`)

	records := taskgraph.ParseRecords(payload)
	g, ids := taskgraph.FromRecords(records)
	fmt.Printf("graph built: %d nodes, %d edges\n", g.Len(), len(g.Edges()))

	// ── Structural queries ────────────────────────────────────────────
	fmt.Printf("roots: %v\n", g.RootNodes())
	fmt.Printf("leaves: %v\n", g.LeafNodes())

	order, err := g.TopologicalOrder()
	if err != nil {
		log.Fatalf("order: %v", err)
	}
	fmt.Printf("topological order: %v\n", order)

	// ── Add an informational edge ─────────────────────────────────────
	// Soft dependencies never gate advancement.
	if err := g.AddEdge(taskgraph.Edge{
		Source:         ids[1],
		Target:         ids[5],
		DependencyType: taskgraph.DependencySoft,
	}); err != nil {
		log.Fatalf("add edge: %v", err)
	}

	// ── Advance to completion, one tick at a time ─────────────────────
	for tick := 1; ; tick++ {
		transitions, err := g.Advance()
		if err != nil {
			log.Fatalf("advance: %v", err)
		}
		if len(transitions) == 0 {
			fmt.Printf("tick %d: fully advanced\n", tick)
			break
		}
		for _, tr := range transitions {
			n, _ := g.Node(tr.ID)
			fmt.Printf("tick %d: %-16s %s -> %s\n", tick, n.Description, tr.From, tr.To)
		}
	}

	// ── Persist and round-trip ────────────────────────────────────────
	if err := store.SaveGraph(ctx, "ml-pipeline", g); err != nil {
		log.Fatalf("save: %v", err)
	}
	fmt.Println("\ngraph saved")

	loaded, err := store.LoadGraph(ctx, "ml-pipeline")
	if err != nil {
		log.Fatalf("load: %v", err)
	}
	fmt.Println("graph loaded:")
	printJSON(loaded)

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteGraph(ctx, "ml-pipeline"); err != nil {
		log.Fatalf("delete: %v", err)
	}
	fmt.Println("\ngraph deleted")
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
