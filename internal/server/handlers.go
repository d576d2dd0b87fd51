package server

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"lease-backend/internal/common/logger"
	"lease-backend/internal/models"
	"lease-backend/internal/search"
)

type SubmissionPipeline interface {
	Submit(ctx context.Context, payload map[string]interface{}) (*models.Application, error)
}

type LeaseProcessor interface {
	Process(ctx context.Context, path string) (*models.LeaseDetails, error)
}

type ApplicationGetter interface {
	GetByID(ctx context.Context, id string) (*models.Application, error)
}

type ApplicationSearcher interface {
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

// Handlers wires the HTTP surface to the domain services.
type Handlers struct {
	pipeline SubmissionPipeline
	lease    LeaseProcessor
	store    ApplicationGetter
	search   ApplicationSearcher
	logger   logger.Logger
}

func NewHandlers(
	pipeline SubmissionPipeline,
	lease LeaseProcessor,
	store ApplicationGetter,
	searcher ApplicationSearcher,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		pipeline: pipeline,
		lease:    lease,
		store:    store,
		search:   searcher,
		logger:   log.WithFields(map[string]interface{}{"component": "http-handlers"}),
	}
}

func (h *Handlers) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// HandleSubmitApplication runs the intake pipeline over the posted payload.
func (h *Handlers) HandleSubmitApplication(c *fiber.Ctx) error {
	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	app, err := h.pipeline.Submit(c.UserContext(), payload)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(app)
}

func (h *Handlers) HandleGetApplication(c *fiber.Ctx) error {
	app, err := h.store.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(app)
}

func (h *Handlers) HandleSearchApplications(c *fiber.Ctx) error {
	q := search.Query{
		Keywords:  c.Query("q"),
		ListingID: c.Query("listingId"),
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		MinScore:  queryInt(c, "minScore"),
		From:      queryInt(c, "from"),
		Size:      queryInt(c, "size"),
	}

	result, err := h.search.Search(c.UserContext(), q)
	if err != nil {
		return err
	}
	return c.JSON(result)
}

type processLeaseRequest struct {
	FilePath string `json:"filePath"`
}

// HandleProcessLease extracts structured lease details from a document
// already present on shared storage.
func (h *Handlers) HandleProcessLease(c *fiber.Ctx) error {
	var req processLeaseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if req.FilePath == "" {
		return fiber.NewError(fiber.StatusBadRequest, "filePath is required")
	}

	details, err := h.lease.Process(c.UserContext(), req.FilePath)
	if err != nil {
		return err
	}
	return c.JSON(details)
}

func queryInt(c *fiber.Ctx, key string) int {
	v := c.Query(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
