package face

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"chronos/internal/domain/employee"
	"chronos/internal/domain/tenant"
)

type EmployeeLookup interface {
	ResolveByNumber(ctx context.Context, employeeNumber, companyID int64) (employee.Employee, error)
}

type ImageWriter interface {
	Write(companyID, employeeNumber int64, imageBase64 string) (string, error)
}

type EmbeddingSource interface {
	Embeddings(ctx context.Context, companyID int64) (json.RawMessage, error)
}

type Service struct {
	store      StoreAPI
	devices    tenant.DeviceResolver
	employees  EmployeeLookup
	writer     ImageWriter
	embeddings EmbeddingSource
	logger     *zap.Logger
}

func NewService(store StoreAPI, devices tenant.DeviceResolver, employees EmployeeLookup, writer ImageWriter, embeddings EmbeddingSource, logger *zap.Logger) *Service {
	return &Service{
		store:      store,
		devices:    devices,
		employees:  employees,
		writer:     writer,
		embeddings: embeddings,
		logger:     logger,
	}
}

// TrainingFaces returns every stored face of the device's company, labelled
// with the employee number.
func (s *Service) TrainingFaces(ctx context.Context, deviceUUID string) ([]TrainingFace, error) {
	device, err := s.devices.ResolveDevice(ctx, deviceUUID)
	if err != nil {
		return nil, err
	}
	faces, err := s.store.FacesForCompany(ctx, device.CompanyID)
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		return nil, ErrNoFaceData
	}

	out := make([]TrainingFace, 0, len(faces))
	for _, f := range faces {
		out = append(out, TrainingFace{
			Name:        strconv.FormatInt(f.EmployeeNumber, 10),
			ImageBase64: f.ImageBase64,
		})
	}
	return out, nil
}

func (s *Service) SyncForDevice(ctx context.Context, deviceUUID string) (SyncResult, error) {
	device, err := s.devices.ResolveDevice(ctx, deviceUUID)
	if err != nil {
		return SyncResult{}, err
	}
	result, err := s.syncCompany(ctx, device.CompanyID)
	if err != nil {
		return SyncResult{}, err
	}
	if err := s.store.MarkDeviceSynced(ctx, device.ID, time.Now()); err != nil {
		s.logger.Warn("device last_sync not updated", zap.Int64("device_id", device.ID), zap.Error(err))
	}
	return result, nil
}

// SyncAll writes the faces of every active company. One failing company does
// not stop the others.
func (s *Service) SyncAll(ctx context.Context) (int, error) {
	companies, err := s.store.CompaniesWithFaces(ctx)
	if err != nil {
		return 0, err
	}
	var (
		total int
		errs  []error
	)
	for _, companyID := range companies {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		result, err := s.syncCompany(ctx, companyID)
		if err != nil {
			s.logger.Error("face sync failed", zap.Int64("company_id", companyID), zap.Error(err))
			errs = append(errs, fmt.Errorf("company %d: %w", companyID, err))
			continue
		}
		total += result.Count
	}
	return total, errors.Join(errs...)
}

func (s *Service) syncCompany(ctx context.Context, companyID int64) (SyncResult, error) {
	faces, err := s.store.FacesForCompany(ctx, companyID)
	if err != nil {
		return SyncResult{}, err
	}
	if len(faces) == 0 {
		return SyncResult{}, ErrNoFaceData
	}

	result := SyncResult{CompanyID: companyID}
	for _, f := range faces {
		if f.ImageBase64 == "" {
			result.Skipped++
			s.logger.Warn("face row without image", zap.Int64("face_id", f.ID), zap.Int64("employee_id", f.EmployeeID))
			continue
		}
		path, err := s.writer.Write(companyID, f.EmployeeNumber, f.ImageBase64)
		if errors.Is(err, ErrInvalidImage) {
			result.Skipped++
			s.logger.Warn("face image not decodable", zap.Int64("face_id", f.ID), zap.Error(err))
			continue
		}
		if err != nil {
			return SyncResult{}, err
		}
		result.Count++
		result.Files = append(result.Files, path)
	}

	s.logger.Info("faces synced",
		zap.Int64("company_id", companyID),
		zap.Int("count", result.Count),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// Upload stores a new face sample for an employee of companyID. The image is
// decoded once up front so bad payloads are rejected at upload time.
func (s *Service) Upload(ctx context.Context, employeeNumber, companyID int64, imageBase64 string) (int64, error) {
	if _, err := Decode(imageBase64); err != nil {
		return 0, err
	}
	emp, err := s.employees.ResolveByNumber(ctx, employeeNumber, companyID)
	if err != nil {
		return 0, err
	}
	id, err := s.store.InsertFace(ctx, emp.ID, companyID, imageBase64)
	if err != nil {
		return 0, err
	}
	s.logger.Info("face uploaded", zap.Int64("face_id", id), zap.Int64("employee_id", emp.ID), zap.Int64("company_id", companyID))
	return id, nil
}

func (s *Service) Embeddings(ctx context.Context, deviceUUID string) (json.RawMessage, error) {
	device, err := s.devices.ResolveDevice(ctx, deviceUUID)
	if err != nil {
		return nil, err
	}
	return s.embeddings.Embeddings(ctx, device.CompanyID)
}
