package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/chatflow"
)

func (h *handler) addNode(c fiber.Ctx) error {
	var node chatflow.Node
	if err := c.Bind().JSON(&node); err != nil {
		return badBody(c)
	}
	added, err := h.svc.AddNode(c.Context(), c.Params("id"), node)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(added)
}

func (h *handler) updateNode(c fiber.Ctx) error {
	var patch map[string]any
	if err := c.Bind().JSON(&patch); err != nil {
		return badBody(c)
	}
	f, err := h.svc.UpdateNode(c.Context(), c.Params("id"), c.Params("nodeId"), patch)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(f)
}

func (h *handler) moveNode(c fiber.Ctx) error {
	var pos chatflow.Position
	if err := c.Bind().JSON(&pos); err != nil {
		return badBody(c)
	}
	f, err := h.svc.MoveNode(c.Context(), c.Params("id"), c.Params("nodeId"), pos)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(f)
}

func (h *handler) deleteNode(c fiber.Ctx) error {
	if _, err := h.svc.DeleteNode(c.Context(), c.Params("id"), c.Params("nodeId")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) duplicateNode(c fiber.Ctx) error {
	id, _, err := h.svc.DuplicateNode(c.Context(), c.Params("id"), c.Params("nodeId"))
	if err != nil {
		return h.fail(c, err)
	}
	if id == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "node not found"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *handler) ports(c fiber.Ctx) error {
	p, err := h.svc.Ports(c.Context(), c.Params("id"), c.Params("nodeId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(p)
}

// ── Edges ─────────────────────────────────────────────────────────────

func (h *handler) connect(c fiber.Ctx) error {
	var edge chatflow.Edge
	if err := c.Bind().JSON(&edge); err != nil {
		return badBody(c)
	}
	id, _, err := h.svc.Connect(c.Context(), c.Params("id"), edge)
	if err != nil {
		return h.fail(c, err)
	}
	if id == "" {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

func (h *handler) deleteEdge(c fiber.Ctx) error {
	if _, err := h.svc.DeleteEdge(c.Context(), c.Params("id"), c.Params("edgeId")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
