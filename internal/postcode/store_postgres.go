package postcode

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// postgresRecord is the GORM model for the shared-server backend.
type postgresRecord struct {
	Postcode     string `gorm:"primaryKey;column:postcode"`
	Area         string `gorm:"column:area;index"`
	Quality      int    `gorm:"column:quality"`
	Easting      int    `gorm:"column:easting;index:idx_postcodes_position"`
	Northing     int    `gorm:"column:northing;index:idx_postcodes_position"`
	CountryCode  string `gorm:"column:country_code"`
	CountyCode   string `gorm:"column:county_code"`
	DistrictCode string `gorm:"column:district_code"`
	WardCode     string `gorm:"column:ward_code"`
}

func (postgresRecord) TableName() string { return "postcodes" }

func toModel(r Record) postgresRecord {
	return postgresRecord(r)
}

func fromModel(m postgresRecord) Record {
	return Record(m)
}

// PostgresStore keeps the postcode data in a PostgreSQL database.
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres connects to the configured PostgreSQL database and
// migrates the schema.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := db.AutoMigrate(&postgresRecord{}); err != nil {
		return nil, fmt.Errorf("migrating postcode schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Reset drops and recreates the postcode table
func (s *PostgresStore) Reset() error {
	if err := s.db.Migrator().DropTable(&postgresRecord{}); err != nil {
		return fmt.Errorf("dropping postcode table: %w", err)
	}
	return s.db.AutoMigrate(&postgresRecord{})
}

// Insert adds a batch of records
func (s *PostgresStore) Insert(recs []Record) error {
	models := make([]postgresRecord, len(recs))
	for i, r := range recs {
		models[i] = toModel(r)
	}
	return s.db.CreateInBatches(models, 1000).Error
}

// ByPostcode looks up one normalised postcode
func (s *PostgresStore) ByPostcode(pc string) (*Record, error) {
	var m postgresRecord
	err := s.db.Where("postcode = ?", Normalise(pc)).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying postcode %s: %w", pc, err)
	}
	r := fromModel(m)
	return &r, nil
}

// ByArea returns every record in a postcode area
func (s *PostgresStore) ByArea(area string) ([]Record, error) {
	var models []postgresRecord
	err := s.db.Where("area = ?", normaliseArea(area)).Order("postcode").Find(&models).Error
	if err != nil {
		return nil, err
	}
	recs := make([]Record, len(models))
	for i, m := range models {
		recs[i] = fromModel(m)
	}
	return recs, nil
}

// InWindow returns positioned records inside an easting/northing window
func (s *PostgresStore) InWindow(minE, minN, maxE, maxN int) ([]Record, error) {
	var models []postgresRecord
	err := s.db.
		Where("easting >= ? AND easting < ? AND northing >= ? AND northing < ?", minE, maxE, minN, maxN).
		Where("NOT (easting = 0 AND northing = 0)").
		Order("postcode").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	recs := make([]Record, len(models))
	for i, m := range models {
		recs[i] = fromModel(m)
	}
	return recs, nil
}

// AreaSummaries reports positioned-record counts and extents per area
func (s *PostgresStore) AreaSummaries() ([]AreaSummary, error) {
	var sums []AreaSummary
	err := s.db.Model(&postgresRecord{}).
		Select("area, COUNT(*) AS count, MIN(easting) AS min_easting, MAX(easting) AS max_easting, MIN(northing) AS min_northing, MAX(northing) AS max_northing").
		Where("NOT (easting = 0 AND northing = 0)").
		Group("area").
		Order("area").
		Scan(&sums).Error
	return sums, err
}

// Close closes the underlying connection pool
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
