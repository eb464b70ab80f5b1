package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"swasth-sathi/internal/domain/entity"
	"swasth-sathi/internal/domain/repository"
	"swasth-sathi/internal/infrastructure/cache"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
	"gorm.io/gorm"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// Cache keys for reference content
	ContentKeyDiseases     = "content:diseases"
	ContentKeyVaccinations = "content:vaccinations"
	ContentKeyAlerts       = "content:alerts"

	// Timeout for one sync pass
	contentSyncTimeout = 15 * time.Second
)

// =============================================================================
// Types
// =============================================================================

// ContentSyncService mirrors the read-only reference tables into the cache
// store and serves reads from it.
//
// Reads are read-through: a miss or a broken cache entry falls back to
// PostgreSQL and refills the key. A background loop re-syncs every table
// before its entries expire. Call Stop() during graceful shutdown.
type ContentSyncService struct {
	db              *gorm.DB
	store           cache.Store
	log             *logrus.Logger
	diseaseRepo     repository.DiseaseRepository
	vaccinationRepo repository.VaccinationRepository
	alertRepo       repository.HealthAlertRepository
	ttl             time.Duration

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
	stopped  atomic.Bool
}

// =============================================================================
// Constructor
// =============================================================================

func NewContentSyncService(
	db *gorm.DB,
	store cache.Store,
	log *logrus.Logger,
	diseaseRepo repository.DiseaseRepository,
	vaccinationRepo repository.VaccinationRepository,
	alertRepo repository.HealthAlertRepository,
	ttl time.Duration,
) *ContentSyncService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ContentSyncService{
		db:              db,
		store:           store,
		log:             log,
		diseaseRepo:     diseaseRepo,
		vaccinationRepo: vaccinationRepo,
		alertRepo:       alertRepo,
		ttl:             ttl,
		stopChan:        make(chan struct{}),
	}
}

// =============================================================================
// Lifecycle Methods
// =============================================================================

// Start launches the periodic re-sync loop. Only the first call has effect.
func (s *ContentSyncService) Start() {
	if s.stopped.Load() || !s.started.CompareAndSwap(false, true) {
		return
	}
	s.wg.Add(1)
	go s.refreshLoop()
}

// Stop gracefully shuts down the service.
// Safe to call multiple times.
func (s *ContentSyncService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("ContentSyncService stopped")
	}
}

// =============================================================================
// Public Methods
// =============================================================================

// Sync loads every reference table into the cache in parallel.
// Called once before accepting traffic and then by the refresh loop. A failure is not fatal: reads
// fall back to the database.
func (s *ContentSyncService) Sync(ctx context.Context) error {
	s.log.Info("Starting content cache sync from database...")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, contentSyncTimeout)
	defer cancel()

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		_, err := s.loadDiseases(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		_, err := s.loadVaccinations(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		_, err := s.loadAlerts(ctx)
		return err
	})

	if err := p.Wait(); err != nil {
		s.log.Warnf("Failed to sync content cache: %+v", err)
		return err
	}

	s.log.WithField("duration", time.Since(startTime).String()).Info("Content cache sync completed")
	return nil
}

// Diseases returns all diseases, most severe first.
func (s *ContentSyncService) Diseases(ctx context.Context) ([]entity.Disease, error) {
	var diseases []entity.Disease
	if s.readCache(ctx, ContentKeyDiseases, &diseases) {
		return diseases, nil
	}
	return s.loadDiseases(ctx)
}

// Vaccinations returns all vaccinations ordered by age group.
func (s *ContentSyncService) Vaccinations(ctx context.Context) ([]entity.Vaccination, error) {
	var vaccinations []entity.Vaccination
	if s.readCache(ctx, ContentKeyVaccinations, &vaccinations) {
		return vaccinations, nil
	}
	return s.loadVaccinations(ctx)
}

// ActiveAlerts returns active alerts, most severe and then newest first.
func (s *ContentSyncService) ActiveAlerts(ctx context.Context) ([]entity.HealthAlert, error) {
	var alerts []entity.HealthAlert
	if s.readCache(ctx, ContentKeyAlerts, &alerts) {
		return alerts, nil
	}
	return s.loadAlerts(ctx)
}

// Invalidate drops every cached table so the next read hits the database.
func (s *ContentSyncService) Invalidate(ctx context.Context) error {
	return s.store.DeletePrefix(ctx, "content:")
}

// =============================================================================
// Private Methods
// =============================================================================

func (s *ContentSyncService) loadDiseases(ctx context.Context) ([]entity.Disease, error) {
	diseases, err := s.diseaseRepo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, ContentKeyDiseases, diseases)
	return diseases, nil
}

func (s *ContentSyncService) loadVaccinations(ctx context.Context) ([]entity.Vaccination, error) {
	vaccinations, err := s.vaccinationRepo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, ContentKeyVaccinations, vaccinations)
	return vaccinations, nil
}

func (s *ContentSyncService) loadAlerts(ctx context.Context) ([]entity.HealthAlert, error) {
	alerts, err := s.alertRepo.FindActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, ContentKeyAlerts, alerts)
	return alerts, nil
}

func (s *ContentSyncService) readCache(ctx context.Context, key string, dst any) bool {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warnf("Failed to read %s from cache: %+v", key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Warnf("Failed to decode cached %s: %+v", key, err)
		return false
	}
	return true
}

func (s *ContentSyncService) writeCache(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Warnf("Failed to encode %s for cache: %+v", key, err)
		return
	}
	if err := s.store.Set(ctx, key, string(raw), s.ttl); err != nil {
		s.log.Warnf("Failed to write %s to cache: %+v", key, err)
	}
}

// refreshLoop re-syncs at half the TTL
func (s *ContentSyncService) refreshLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Content refresh goroutine stopping")
			return
		case <-ticker.C:
			_ = s.Sync(context.Background())
		}
	}
}
