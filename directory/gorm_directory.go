package directory

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/dinecommand/models"
	"github.com/yeremiapane/dinecommand/utils"
	"gorm.io/gorm"
)

// GormDirectory reads guests and staff from the restaurant database. It is
// read-only from the floor's point of view and never reports lookup errors:
// anything that is not a hit is "absent".
type GormDirectory struct {
	DB *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{DB: db}
}

// Guest -> cari tamu berdasarkan id, (nil, false) kalau tidak ada
func (d *GormDirectory) Guest(id string) (*models.Guest, bool) {
	if id == "" {
		return nil, false
	}
	var guest models.Guest
	if err := d.DB.Where("id = ?", id).First(&guest).Error; err != nil {
		logMiss("guest", id, err)
		return nil, false
	}
	return &guest, true
}

// Staff -> cari staff berdasarkan id
func (d *GormDirectory) Staff(id string) (*models.Staff, bool) {
	if id == "" {
		return nil, false
	}
	var staff models.Staff
	if err := d.DB.Where("id = ?", id).First(&staff).Error; err != nil {
		logMiss("staff", id, err)
		return nil, false
	}
	return &staff, true
}

func logMiss(kind, id string, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	utils.ErrorLogger.WithFields(logrus.Fields{
		"kind": kind,
		"id":   id,
	}).Warnf("directory lookup failed, treating as absent: %v", err)
}
