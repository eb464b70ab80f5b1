package usecase

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"sync"
	"testing"
	"time"

	"swasth-sathi/config"
	"swasth-sathi/internal/domain/entity"
	"swasth-sathi/internal/infrastructure/mailer"
	"swasth-sathi/internal/repository"
	"swasth-sathi/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&entity.User{},
		&entity.HealthRecord{},
		&entity.AuditLog{},
		&entity.Disease{},
		&entity.Vaccination{},
		&entity.HealthAlert{},
	))
	return db
}

func newTestAuditService(db *gorm.DB) service.AuditService {
	return service.NewAuditService(db, quietLogger(), repository.NewAuditLogRepository())
}

var testJWTConfig = config.JWTConfig{
	Secret:        "test-secret",
	AccessExpiry:  15 * time.Minute,
	RefreshExpiry: time.Hour,
}

// fakeMailer records every message and fails the calls listed in failOn
// (1-based).
type fakeMailer struct {
	mu     sync.Mutex
	sent   []mailer.Message
	failOn map[int]error
	calls  int
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) (*mailer.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err, ok := m.failOn[m.calls]; ok {
		return nil, err
	}
	m.sent = append(m.sent, msg)
	return &mailer.SendResult{ID: fmt.Sprintf("email_%d", m.calls)}, nil
}

func (m *fakeMailer) messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.sent...)
}

var codePattern = regexp.MustCompile(`>(\d{6})<`)

// lastCode extracts the one-time code from the most recent email.
func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	msgs := m.messages()
	require.NotEmpty(t, msgs)
	match := codePattern.FindStringSubmatch(msgs[len(msgs)-1].HTML)
	require.Len(t, match, 2)
	return match[1]
}

type fakeCaptcha struct {
	err error
}

func (c fakeCaptcha) Verify(context.Context, string, string) error {
	return c.err
}
