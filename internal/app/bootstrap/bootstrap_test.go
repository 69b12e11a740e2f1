package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-secretary/internal/clinic"
	appconfig "github.com/wolfman30/clinic-secretary/internal/config"
	"github.com/wolfman30/clinic-secretary/internal/notify"
	"github.com/wolfman30/clinic-secretary/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	assert.Nil(t, BuildRedisClient(context.Background(), nil, nil, false))
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, nil, false))
}

func TestBuildRedisClientVerifies(t *testing.T) {
	mr := miniredis.RunT(t)
	logger := logging.New("error")

	client := BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger, true)
	require.NotNil(t, client)
	defer client.Close()

	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{RedisAddr: mr.Addr()}, logger, true))
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	assert.Nil(t, ConnectPostgresPool(context.Background(), "", logging.New("error")))
}

func TestOpenSQLDBRequiresURL(t *testing.T) {
	_, err := OpenSQLDB(context.Background(), " ")
	assert.Error(t, err)
}

func TestClinicDefaultsOverlayConfig(t *testing.T) {
	cfg := &appconfig.Config{
		ClinicName:        "Тест",
		ClinicCountry:     "IL",
		ClinicPhone:       "+972501234567",
		AdminNotifyEmails: []string{"admin@example.com"},
	}
	out := ClinicDefaults(cfg)
	assert.Equal(t, "Тест", out.Name)
	assert.Equal(t, "+972501234567", out.Phone)
	assert.Equal(t, []string{"admin@example.com"}, out.AdminEmails)
	assert.Nil(t, out.BusinessHours.Friday)
	assert.NotNil(t, out.BusinessHours.Sunday)
}

func TestBuildClinicStoreServesDefaultsWithoutRedis(t *testing.T) {
	defaults := clinic.DefaultConfig()
	defaults.Name = "Без Redis"
	store := BuildClinicStore(nil, defaults)

	got, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Без Redis", got.Name)
	assert.Error(t, store.Set(context.Background(), got))
}

func TestLoadCatalogFallsBackToDefaults(t *testing.T) {
	cat := LoadCatalog(context.Background(), nil, logging.New("error"))
	assert.NotEmpty(t, cat.Services())
	assert.NotEmpty(t, cat.Specialists())
}

func TestBuildEmailSenderSelection(t *testing.T) {
	logger := logging.New("error")
	ctx := context.Background()

	sender, provider := BuildEmailSender(ctx, &appconfig.Config{EmailProvider: "stub"}, logger)
	assert.Equal(t, "stub", provider)
	assert.IsType(t, &notify.StubEmailSender{}, sender)

	_, provider = BuildEmailSender(ctx, &appconfig.Config{EmailProvider: "sendgrid"}, logger)
	assert.Equal(t, "stub", provider, "missing api key falls back to stub")

	sender, provider = BuildEmailSender(ctx, &appconfig.Config{EmailProvider: "sendgrid", SendGridAPIKey: "SG.test", SendGridFromEmail: "clinic@example.com"}, logger)
	assert.Equal(t, "sendgrid", provider)
	assert.IsType(t, &notify.SendGridSender{}, sender)

	_, provider = BuildEmailSender(ctx, &appconfig.Config{EmailProvider: "ses"}, logger)
	assert.Equal(t, "stub", provider, "missing from address falls back to stub")
}

func TestBuildEmailSenderSES(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	cfg := &appconfig.Config{
		EmailProvider:       "ses",
		SESFromEmail:        "clinic@example.com",
		AWSRegion:           "eu-central-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: "http://localhost:4566",
	}
	sender, provider := BuildEmailSender(context.Background(), cfg, logging.New("error"))
	assert.Equal(t, "ses", provider)
	assert.IsType(t, &notify.SESSender{}, sender)
}

func TestLoadAWSConfigAppliesEndpointOverride(t *testing.T) {
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	awsCfg, err := LoadAWSConfig(context.Background(), &appconfig.Config{
		AWSRegion:           "eu-central-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: "http://localhost:4566",
	})
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", awsCfg.Region)
	require.NotNil(t, awsCfg.BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", *awsCfg.BaseEndpoint)
}
