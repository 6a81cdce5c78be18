package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/proporco/internal/domain/models"
	"github.com/mamadbah2/proporco/internal/service/livestock"
)

// resource binds one record type's service operations to the standard
// collection and item routes.
type resource[T, In any] struct {
	list   func(c *gin.Context, accountID string) ([]T, error)
	get    func(ctx context.Context, accountID, id string) (T, error)
	create func(ctx context.Context, accountID string, in In) (T, models.Changes, error)
	update func(ctx context.Context, accountID, id string, in In) (T, models.Changes, error)
	remove func(ctx context.Context, accountID, id string) (models.Changes, error)
}

func listAll[T any](fn func(context.Context, string) ([]T, error)) func(*gin.Context, string) ([]T, error) {
	return func(c *gin.Context, accountID string) ([]T, error) {
		return fn(c.Request.Context(), accountID)
	}
}

func register[T, In any](g *gin.RouterGroup, path string, r resource[T, In], logger *zap.Logger) {
	g.GET(path, func(c *gin.Context) {
		items, err := r.list(c, accountID(c))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items})
	})

	g.GET(path+"/:id", func(c *gin.Context) {
		item, err := r.get(c.Request.Context(), accountID(c), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": item})
	})

	g.POST(path, func(c *gin.Context) {
		var in In
		if err := c.ShouldBindJSON(&in); err != nil {
			badBody(c, logger, err)
			return
		}
		item, changes, err := r.create(c.Request.Context(), accountID(c), in)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"data": item, "changes": changes})
	})

	g.PUT(path+"/:id", func(c *gin.Context) {
		var in In
		if err := c.ShouldBindJSON(&in); err != nil {
			badBody(c, logger, err)
			return
		}
		item, changes, err := r.update(c.Request.Context(), accountID(c), c.Param("id"), in)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": item, "changes": changes})
	})

	g.DELETE(path+"/:id", func(c *gin.Context) {
		changes, err := r.remove(c.Request.Context(), accountID(c), c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"changes": changes})
	})
}

// RegisterLivestock mounts the CRUD routes of every record type on g. g must
// already be behind the authentication middleware.
func RegisterLivestock(g *gin.RouterGroup, svc *livestock.Service, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	register(g, "/animals", resource[models.Animal, models.AnimalInput]{
		list:   listAll(svc.ListAnimals),
		get:    svc.GetAnimal,
		create: svc.CreateAnimal,
		update: svc.UpdateAnimal,
		remove: svc.DeleteAnimal,
	}, logger)

	register(g, "/enclosures", resource[models.Enclosure, models.EnclosureInput]{
		list:   listAll(svc.ListEnclosures),
		get:    svc.GetEnclosure,
		create: svc.CreateEnclosure,
		update: svc.UpdateEnclosure,
		remove: svc.DeleteEnclosure,
	}, logger)

	register(g, "/supplies", resource[models.Supply, models.SupplyInput]{
		list: func(c *gin.Context, accountID string) ([]models.Supply, error) {
			if c.Query("low_stock") == "true" {
				return svc.LowStockSupplies(c.Request.Context(), accountID)
			}
			return svc.ListSupplies(c.Request.Context(), accountID)
		},
		get:    svc.GetSupply,
		create: svc.CreateSupply,
		update: svc.UpdateSupply,
		remove: svc.DeleteSupply,
	}, logger)

	register(g, "/compounds", resource[models.FeedCompound, models.FeedCompoundInput]{
		list:   listAll(svc.ListCompounds),
		get:    svc.GetCompound,
		create: svc.CreateCompound,
		update: svc.UpdateCompound,
		remove: svc.DeleteCompound,
	}, logger)

	register(g, "/feedings", resource[models.FeedingRecord, models.FeedingInput]{
		list:   listAll(svc.ListFeedings),
		get:    svc.GetFeeding,
		create: svc.CreateFeeding,
		update: svc.UpdateFeeding,
		remove: svc.DeleteFeeding,
	}, logger)

	register(g, "/health-records", resource[models.HealthRecord, models.HealthInput]{
		list:   listAll(svc.ListHealthRecords),
		get:    svc.GetHealthRecord,
		create: svc.CreateHealthRecord,
		update: svc.UpdateHealthRecord,
		remove: svc.DeleteHealthRecord,
	}, logger)

	register(g, "/weighings", resource[models.WeighingRecord, models.WeighingInput]{
		list: func(c *gin.Context, accountID string) ([]models.WeighingRecord, error) {
			return svc.ListWeighings(c.Request.Context(), accountID, c.Query("animal_id"))
		},
		get:    svc.GetWeighing,
		create: svc.RecordWeighing,
		update: svc.UpdateWeighing,
		remove: svc.DeleteWeighing,
	}, logger)

	register(g, "/sales", resource[models.Sale, models.SaleInput]{
		list:   listAll(svc.ListSales),
		get:    svc.GetSale,
		create: svc.CreateSale,
		update: svc.UpdateSale,
		remove: svc.DeleteSale,
	}, logger)

	register(g, "/costs", resource[models.Cost, models.CostInput]{
		list:   listAll(svc.ListCosts),
		get:    svc.GetCost,
		create: svc.CreateCost,
		update: svc.UpdateCost,
		remove: svc.DeleteCost,
	}, logger)
}
