package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pharmacore/pharmacy-api/internal/medicine/domain"
)

var tracer = otel.Tracer("medicine-repository")

// MedicineRepositoryWithTracing decorates a medicine repository with spans
type MedicineRepositoryWithTracing struct {
	inner domain.MedicineRepository
}

// NewMedicineRepositoryWithTracing wraps a repository with tracing
func NewMedicineRepositoryWithTracing(inner domain.MedicineRepository) *MedicineRepositoryWithTracing {
	return &MedicineRepositoryWithTracing{inner: inner}
}

func (r *MedicineRepositoryWithTracing) span(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Create with tracing
func (r *MedicineRepositoryWithTracing) Create(ctx context.Context, medicine *domain.Medicine) error {
	ctx, span := r.span(ctx, "repository.medicine.Create",
		attribute.String("medicine.name", medicine.Name),
		attribute.String("medicine.category", medicine.Category),
	)
	err := r.inner.Create(ctx, medicine)
	finish(span, err)
	return err
}

// FindByID with tracing
func (r *MedicineRepositoryWithTracing) FindByID(ctx context.Context, id uint) (*domain.Medicine, error) {
	ctx, span := r.span(ctx, "repository.medicine.FindByID",
		attribute.Int("medicine.id", int(id)),
	)
	medicine, err := r.inner.FindByID(ctx, id)
	if err == nil {
		span.SetAttributes(attribute.Int("medicine.quantity", medicine.Quantity))
	}
	finish(span, err)
	return medicine, err
}

// FindAll with tracing
func (r *MedicineRepositoryWithTracing) FindAll(ctx context.Context, filter domain.Filter, limit, offset int) ([]domain.Medicine, error) {
	ctx, span := r.span(ctx, "repository.medicine.FindAll",
		attribute.Int("query.limit", limit),
		attribute.Int("query.offset", offset),
	)
	medicines, err := r.inner.FindAll(ctx, filter, limit, offset)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(medicines)))
	}
	finish(span, err)
	return medicines, err
}

// FindActive with tracing
func (r *MedicineRepositoryWithTracing) FindActive(ctx context.Context) ([]domain.Medicine, error) {
	ctx, span := r.span(ctx, "repository.medicine.FindActive")
	medicines, err := r.inner.FindActive(ctx)
	finish(span, err)
	return medicines, err
}

// Update with tracing
func (r *MedicineRepositoryWithTracing) Update(ctx context.Context, medicine *domain.Medicine) error {
	ctx, span := r.span(ctx, "repository.medicine.Update",
		attribute.Int("medicine.id", int(medicine.ID)),
	)
	err := r.inner.Update(ctx, medicine)
	finish(span, err)
	return err
}

// Delete with tracing
func (r *MedicineRepositoryWithTracing) Delete(ctx context.Context, id uint) error {
	ctx, span := r.span(ctx, "repository.medicine.Delete",
		attribute.Int("medicine.id", int(id)),
	)
	err := r.inner.Delete(ctx, id)
	finish(span, err)
	return err
}

// LowStock with tracing
func (r *MedicineRepositoryWithTracing) LowStock(ctx context.Context) ([]domain.Medicine, error) {
	ctx, span := r.span(ctx, "repository.medicine.LowStock")
	medicines, err := r.inner.LowStock(ctx)
	if err == nil {
		span.SetAttributes(attribute.Int("result.count", len(medicines)))
	}
	finish(span, err)
	return medicines, err
}

// ExpiringWithin with tracing
func (r *MedicineRepositoryWithTracing) ExpiringWithin(ctx context.Context, days int) ([]domain.Medicine, error) {
	ctx, span := r.span(ctx, "repository.medicine.ExpiringWithin",
		attribute.Int("query.days", days),
	)
	medicines, err := r.inner.ExpiringWithin(ctx, days)
	finish(span, err)
	return medicines, err
}

// Logs with tracing
func (r *MedicineRepositoryWithTracing) Logs(ctx context.Context, medicineID uint, limit, offset int) ([]domain.InventoryLog, error) {
	ctx, span := r.span(ctx, "repository.medicine.Logs",
		attribute.Int("medicine.id", int(medicineID)),
	)
	logs, err := r.inner.Logs(ctx, medicineID, limit, offset)
	finish(span, err)
	return logs, err
}
