package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mamadbah2/proporco/internal/domain/errs"
	"github.com/mamadbah2/proporco/internal/domain/models"
)

// Count returns how many rows of model match the condition.
func (t *Tx) Count(model any, query string, args ...any) (int64, error) {
	var n int64
	err := t.db.Model(model).Where(query, args...).Count(&n).Error
	return n, errs.Storage("count", err)
}

// Nullify sets column to NULL on every row of model matching the condition.
func (t *Tx) Nullify(model any, column, query string, args ...any) error {
	err := t.db.Model(model).Where(query, args...).Update(column, gorm.Expr("NULL")).Error
	return errs.Storage("nullify "+column, err)
}

// DeleteWhere removes every row of model matching the condition.
func (t *Tx) DeleteWhere(model any, query string, args ...any) error {
	return errs.Storage("delete where", t.db.Where(query, args...).Delete(model).Error)
}

// LatestWeighing returns the weighing with the greatest date for the animal,
// skipping excludeID. Ties go to the most recently created row. nil when none.
func (t *Tx) LatestWeighing(animalID, excludeID string) (*models.WeighingRecord, error) {
	q := t.db.Where("animal_id = ?", animalID)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var w models.WeighingRecord
	err := q.Order("date DESC").Order("created_at DESC").Take(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Storage("latest weighing", err)
	}
	return &w, nil
}

// SetCurrentWeight writes the animal's current weight; nil clears it.
func (t *Tx) SetCurrentWeight(animalID string, weight *float64) error {
	var value any = gorm.Expr("NULL")
	if weight != nil {
		value = *weight
	}
	err := t.db.Model(&models.Animal{}).Where("id = ?", animalID).Update("current_weight", value).Error
	return errs.Storage("set current weight", err)
}

// SetAnimalStatus moves every listed animal to status.
func (t *Tx) SetAnimalStatus(ids []string, status models.AnimalStatus) error {
	if len(ids) == 0 {
		return nil
	}
	err := t.db.Model(&models.Animal{}).Where("id IN ?", ids).Update("status", status).Error
	return errs.Storage("set animal status", err)
}

// LoadSale loads a sale and its lines through the ownership guard.
func (t *Tx) LoadSale(accountID, id string) (models.Sale, error) {
	var sale models.Sale
	if err := t.Load(&sale, EntitySale, accountID, id); err != nil {
		return models.Sale{}, err
	}
	if err := t.db.Where("sale_id = ?", sale.ID).Order("animal_id").Find(&sale.Lines).Error; err != nil {
		return models.Sale{}, errs.Storage("load sale lines", err)
	}
	return sale, nil
}

// ListSales loads every sale of the account with lines, newest first.
func (t *Tx) ListSales(accountID string) ([]models.Sale, error) {
	var sales []models.Sale
	err := t.db.Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("animal_id") }).
		Where("account_id = ?", accountID).Order("date DESC").Find(&sales).Error
	return sales, errs.Storage("list sales", err)
}

// ReplaceSaleLines swaps every line of the sale for lines.
func (t *Tx) ReplaceSaleLines(saleID string, lines []models.SaleLine) error {
	if err := t.DeleteWhere(&models.SaleLine{}, "sale_id = ?", saleID); err != nil {
		return err
	}
	for i := range lines {
		lines[i].SaleID = saleID
	}
	if len(lines) == 0 {
		return nil
	}
	return errs.Storage("insert sale lines", t.db.Create(&lines).Error)
}

// SaleLineForAnimal returns the line selling the animal, or nil.
func (t *Tx) SaleLineForAnimal(animalID string) (*models.SaleLine, error) {
	var line models.SaleLine
	err := t.db.Where("animal_id = ?", animalID).Take(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Storage("sale line for animal", err)
	}
	return &line, nil
}

// LoadHealthRecord loads a health record and its animal set through the ownership guard.
func (t *Tx) LoadHealthRecord(accountID, id string) (models.HealthRecord, error) {
	var rec models.HealthRecord
	if err := t.Load(&rec, EntityHealth, accountID, id); err != nil {
		return models.HealthRecord{}, err
	}
	ids, err := t.healthAnimals([]string{rec.ID})
	if err != nil {
		return models.HealthRecord{}, err
	}
	rec.AnimalIDs = ids[rec.ID]
	return rec, nil
}

// ListHealthRecords loads every health record of the account with animal sets, newest first.
func (t *Tx) ListHealthRecords(accountID string) ([]models.HealthRecord, error) {
	var recs []models.HealthRecord
	if err := t.List(&recs, accountID, "date DESC"); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	animals, err := t.healthAnimals(ids)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].AnimalIDs = animals[recs[i].ID]
	}
	return recs, nil
}

func (t *Tx) healthAnimals(recordIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(recordIDs))
	if len(recordIDs) == 0 {
		return out, nil
	}
	var rows []models.HealthRecordAnimal
	err := t.db.Where("health_record_id IN ?", recordIDs).Order("animal_id").Find(&rows).Error
	if err != nil {
		return nil, errs.Storage("load health animals", err)
	}
	for _, r := range rows {
		out[r.HealthRecordID] = append(out[r.HealthRecordID], r.AnimalID)
	}
	return out, nil
}

// ReplaceHealthAnimals deletes every association of the record and inserts animalIDs.
func (t *Tx) ReplaceHealthAnimals(recordID string, animalIDs []string) error {
	if err := t.DeleteWhere(&models.HealthRecordAnimal{}, "health_record_id = ?", recordID); err != nil {
		return err
	}
	if len(animalIDs) == 0 {
		return nil
	}
	rows := make([]models.HealthRecordAnimal, 0, len(animalIDs))
	for _, id := range animalIDs {
		rows = append(rows, models.HealthRecordAnimal{HealthRecordID: recordID, AnimalID: id})
	}
	return errs.Storage("insert health animals", t.db.Create(&rows).Error)
}

// LoadCompound loads a compound and its ordered ingredients through the ownership guard.
func (t *Tx) LoadCompound(accountID, id string) (models.FeedCompound, error) {
	var c models.FeedCompound
	if err := t.Load(&c, EntityCompound, accountID, id); err != nil {
		return models.FeedCompound{}, err
	}
	if err := t.db.Where("compound_id = ?", c.ID).Order("position").Find(&c.Ingredients).Error; err != nil {
		return models.FeedCompound{}, errs.Storage("load ingredients", err)
	}
	return c, nil
}

// ListCompounds loads every compound of the account with ingredients, by name.
func (t *Tx) ListCompounds(accountID string) ([]models.FeedCompound, error) {
	var out []models.FeedCompound
	err := t.db.Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("account_id = ?", accountID).Order("name").Find(&out).Error
	return out, errs.Storage("list compounds", err)
}

// ReplaceIngredients swaps every ingredient of the compound, keeping the given order.
func (t *Tx) ReplaceIngredients(compoundID string, ingredients []models.CompoundIngredient) error {
	if err := t.DeleteWhere(&models.CompoundIngredient{}, "compound_id = ?", compoundID); err != nil {
		return err
	}
	if len(ingredients) == 0 {
		return nil
	}
	for i := range ingredients {
		ingredients[i].ID = 0
		ingredients[i].CompoundID = compoundID
		ingredients[i].Position = i
	}
	return errs.Storage("insert ingredients", t.db.Create(&ingredients).Error)
}
