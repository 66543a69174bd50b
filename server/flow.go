package server

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/chatflow"
)

type createFlowRequest struct {
	ID      string `json:"id"`
	Example string `json:"example"`
}

func (h *handler) listExamples(c fiber.Ctx) error {
	examples, err := chatflow.Examples()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(examples)
}

func (h *handler) getExample(c fiber.Ctx) error {
	ex, ok, err := chatflow.LookupExample(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "example not found"})
	}
	return c.JSON(ex)
}

func (h *handler) createFlow(c fiber.Ctx) error {
	var req createFlowRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badBody(c)
		}
	}
	f, err := h.svc.CreateFlow(c.Context(), req.ID, req.Example)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(f)
}

func (h *handler) listFlows(c fiber.Ctx) error {
	ids, err := h.svc.ListFlows(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(ids)
}

func (h *handler) getFlow(c fiber.Ctx) error {
	f, err := h.svc.GetFlow(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(f)
}

func (h *handler) replaceFlow(c fiber.Ctx) error {
	var body chatflow.Flow
	if err := c.Bind().JSON(&body); err != nil {
		return badBody(c)
	}
	f, err := h.svc.ReplaceFlow(c.Context(), c.Params("id"), body.Nodes, body.Edges)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(f)
}

func (h *handler) deleteFlow(c fiber.Ctx) error {
	if err := h.svc.DeleteFlow(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *handler) loadExample(c fiber.Ctx) error {
	f, err := h.svc.LoadExample(c.Context(), c.Params("id"), c.Params("exampleId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(f)
}

func (h *handler) validate(c fiber.Ctx) error {
	report, err := h.svc.Validate(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(report)
}

func (h *handler) export(c fiber.Ctx) error {
	doc, err := h.svc.Export(c.Context(), c.Params("id"))
	var invalid *chatflow.InvalidFlowError
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  err.Error(),
			"report": invalid.Report,
		})
	}
	if err != nil {
		return h.fail(c, err)
	}

	var buf bytes.Buffer
	if err := doc.Encode(&buf); err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, doc.FileName()))
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(buf.Bytes())
}

func (h *handler) mermaid(c fiber.Ctx) error {
	diagram, err := h.svc.Mermaid(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(diagram)
}
