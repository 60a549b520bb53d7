package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/taskgraph"
	"github.com/meikuraledutech/taskgraph/postgres"
)

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	var store taskgraph.Store = postgres.New(pool)

	app := fiber.New()

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", func(c fiber.Ctx) error {
		if err := store.CreateSchema(c.Context()); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"message": "schema created"})
	})

	app.Delete("/schema", func(c fiber.Ctx) error {
		if err := store.DropSchema(c.Context()); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"message": "schema dropped"})
	})

	// ── Graphs (bulk) ─────────────────────────────────────────────────
	app.Post("/graphs/:id", func(c fiber.Ctx) error {
		var g taskgraph.Graph
		if err := c.Bind().JSON(&g); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if err := store.SaveGraph(c.Context(), c.Params("id"), &g); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(&g)
	})

	app.Get("/graphs/:id", func(c fiber.Ctx) error {
		g, err := store.LoadGraph(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if g == nil {
			return c.Status(404).JSON(fiber.Map{"error": "graph not found"})
		}
		return c.JSON(g)
	})

	app.Delete("/graphs/:id", func(c fiber.Ctx) error {
		if err := store.DeleteGraph(c.Context(), c.Params("id")); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(204)
	})

	// ── Planner boundary ──────────────────────────────────────────────
	// A malformed decomposition payload is discarded and yields an empty
	// graph — the engine never sees partially-parsed records.
	app.Post("/graphs/:id/plan", func(c fiber.Ctx) error {
		records := taskgraph.ParseRecords(c.Body())
		g, _ := taskgraph.FromRecords(records)
		if err := store.SaveGraph(c.Context(), c.Params("id"), g); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(g)
	})

	// ── Topology ──────────────────────────────────────────────────────
	app.Get("/graphs/:id/order", func(c fiber.Ctx) error {
		g, err := store.LoadGraph(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if g == nil {
			return c.Status(404).JSON(fiber.Map{"error": "graph not found"})
		}
		order, err := g.TopologicalOrder()
		if errors.Is(err, taskgraph.ErrCycleDetected) {
			return c.Status(422).JSON(fiber.Map{"error": "cycle detected"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"order": order, "is_dag": true})
	})

	// ── Advancement ───────────────────────────────────────────────────
	app.Post("/graphs/:id/advance", func(c fiber.Ctx) error {
		g, err := store.LoadGraph(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if g == nil {
			return c.Status(404).JSON(fiber.Map{"error": "graph not found"})
		}
		transitions, err := g.Advance()
		if errors.Is(err, taskgraph.ErrCycleDetected) {
			return c.Status(422).JSON(fiber.Map{"error": "cycle detected"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if err := store.ApplyTransitions(c.Context(), c.Params("id"), transitions); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"transitions": transitions})
	})

	// ── Nodes ─────────────────────────────────────────────────────────
	app.Post("/graphs/:id/nodes", func(c fiber.Ctx) error {
		var node taskgraph.Node
		if err := c.Bind().JSON(&node); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		id, err := store.AddNode(c.Context(), c.Params("id"), &node)
		if errors.Is(err, taskgraph.ErrInvalidStatus) {
			return c.Status(422).JSON(fiber.Map{"error": "invalid status"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(fiber.Map{"id": id})
	})

	app.Get("/graphs/:id/nodes", func(c fiber.Ctx) error {
		nodes, err := store.ListNodes(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(nodes)
	})

	app.Get("/nodes/:id", func(c fiber.Ctx) error {
		n, err := store.GetNode(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		if n == nil {
			return c.Status(404).JSON(fiber.Map{"error": "node not found"})
		}
		return c.JSON(n)
	})

	app.Patch("/nodes/:id/status", func(c fiber.Ctx) error {
		var body struct {
			Status taskgraph.Status `json:"status"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		err := store.UpdateNodeStatus(c.Context(), c.Params("id"), body.Status)
		if errors.Is(err, taskgraph.ErrNodeNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "node not found"})
		}
		if errors.Is(err, taskgraph.ErrInvalidStatus) {
			return c.Status(422).JSON(fiber.Map{"error": "invalid status"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(204)
	})

	app.Delete("/nodes/:id", func(c fiber.Ctx) error {
		if err := store.DeleteNode(c.Context(), c.Params("id")); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(204)
	})

	// ── Edges ─────────────────────────────────────────────────────────
	app.Post("/graphs/:id/edges", func(c fiber.Ctx) error {
		var edge taskgraph.Edge
		if err := c.Bind().JSON(&edge); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		err := store.AddEdge(c.Context(), c.Params("id"), &edge)
		if errors.Is(err, taskgraph.ErrNodeNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "source or target node not found"})
		}
		if errors.Is(err, taskgraph.ErrDuplicateEdge) {
			return c.Status(409).JSON(fiber.Map{"error": "edge already exists"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(&edge)
	})

	app.Get("/graphs/:id/edges", func(c fiber.Ctx) error {
		edges, err := store.ListEdges(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(edges)
	})

	app.Delete("/graphs/:id/edges/:source/:target", func(c fiber.Ctx) error {
		err := store.DeleteEdge(c.Context(), c.Params("id"), c.Params("source"), c.Params("target"))
		if errors.Is(err, taskgraph.ErrEdgeNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "edge not found"})
		}
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(204)
	})

	log.Fatal(app.Listen(":3000"))
}
