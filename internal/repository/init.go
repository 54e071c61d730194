package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/coldreach/warmstack/interfaces"
	"github.com/coldreach/warmstack/internal/config"
	"github.com/coldreach/warmstack/internal/models"
)

type Repositories struct {
	MailboxRepository        interfaces.MailboxRepository
	WarmupEmailRepository    interfaces.WarmupEmailRepository
	WarmupProfileRepository  interfaces.WarmupProfileRepository
	WarmupAlertRepository    interfaces.WarmupAlertRepository
	WarmupDailyLogRepository interfaces.WarmupDailyLogRepository
	DNSCheckRepository       interfaces.DNSCheckRepository
	BlacklistCheckRepository interfaces.BlacklistCheckRepository
	Settings                 interfaces.SettingsStore
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		MailboxRepository:        NewMailboxRepository(db),
		WarmupEmailRepository:    NewWarmupEmailRepository(db),
		WarmupProfileRepository:  NewWarmupProfileRepository(db),
		WarmupAlertRepository:    NewWarmupAlertRepository(db),
		WarmupDailyLogRepository: NewWarmupDailyLogRepository(db),
		DNSCheckRepository:       NewDNSCheckRepository(db),
		BlacklistCheckRepository: NewBlacklistCheckRepository(db),
		Settings:                 NewSettingsStore(db),
	}
}

func MigrateDB(dbConfig *config.DatabaseConfig, gormDB *gorm.DB) error {
	db, err := gormDB.DB()
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(5)

	err = gormDB.AutoMigrate(
		&models.Mailbox{},
		&models.WarmupProfile{},
		&models.WarmupEmail{},
		&models.WarmupAlert{},
		&models.WarmupDailyLog{},
		&models.DNSCheckResult{},
		&models.BlacklistCheckResult{},
		&models.Setting{},
	)

	db.Close()

	db, _ = gormDB.DB()
	db.SetMaxIdleConns(dbConfig.MaxIdleConn)
	db.SetMaxOpenConns(dbConfig.MaxConn)
	db.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Minute)

	return err
}
