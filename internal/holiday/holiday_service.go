package holiday

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	holidayerrors "go-payday/internal/holiday/errors"
	"go-payday/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const yearCacheTTL = 12 * time.Hour

func yearCacheKey(year int) string {
	return fmt.Sprintf("holidays:year:%d", year)
}

//go:generate mockgen -source=holiday_service.go -destination=mock/holiday_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	GetAll(ctx context.Context) ([]HolidayResponse, error)
	Delete(ctx context.Context, id string) error

	// DatesIn returns the holiday dates inside [start, end] keyed by
	// "2006-01-02". Lookup failures degrade to an empty set; payroll must
	// never fail because a calendar source is down.
	DatesIn(ctx context.Context, start, end time.Time) map[string]bool
	IsHoliday(ctx context.Context, date time.Time) bool
}

type service struct {
	db     *gorm.DB
	repo   Repository
	api    *APIClient
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, api *APIClient, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("holiday.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.service")
	}
	return &service{db: db, repo: repo, api: api, rdb: rdb, sf: &singleflight.Group{}, logger: l}
}

func (s *service) Create(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return HolidayResponse{}, apperror.InvalidField("date")
	}

	tx := s.db.WithContext(ctx).Begin()
	if err := tx.Error; err != nil {
		return HolidayResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	h := &Holiday{
		ID:     uuid.New(),
		Date:   date,
		Name:   req.Name,
		Source: SourceManual,
	}
	if err := qtx.Create(ctx, h); err != nil {
		if isUniqueViolation(err) {
			return HolidayResponse{}, holidayerrors.ErrDuplicateHoliday
		}
		s.logger.Error("create holiday persist failed", zap.Error(err))
		return HolidayResponse{}, err
	}

	if err := tx.Commit().Error; err != nil {
		return HolidayResponse{}, err
	}

	s.invalidateYear(ctx, date.Year())
	return mapToResponse(*h), nil
}

func (s *service) GetAll(ctx context.Context) ([]HolidayResponse, error) {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(rows), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return holidayerrors.ErrInvalidHolidayID
	}

	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return holidayerrors.ErrHolidayNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateYear(ctx, h.Date.Year())
	return nil
}

func (s *service) IsHoliday(ctx context.Context, date time.Time) bool {
	key := date.Format("2006-01-02")
	return s.DatesIn(ctx, date, date)[key]
}

func (s *service) DatesIn(ctx context.Context, start, end time.Time) map[string]bool {
	set := make(map[string]bool)
	for year := start.Year(); year <= end.Year(); year++ {
		for d := range s.yearSet(ctx, year) {
			set[d] = true
		}
	}

	out := make(map[string]bool)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		if set[key] {
			out[key] = true
		}
	}
	return out
}

// yearSet assembles one year's holiday dates from redis, the local table
// and the external API, in that order. Every source is optional.
func (s *service) yearSet(ctx context.Context, year int) map[string]bool {
	cacheKey := yearCacheKey(year)

	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, cacheKey).Result()
		if err == nil {
			var dates []string
			if err := json.Unmarshal([]byte(cached), &dates); err == nil {
				return toSet(dates)
			}
		}
	}

	v, _, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		set := make(map[string]bool)

		local, err := s.repo.FindByYear(ctx, year)
		if err != nil {
			s.logger.Warn("holiday table lookup failed, continuing without it",
				zap.Int("year", year),
				zap.Error(err),
			)
		}
		for _, h := range local {
			set[h.Date.Format("2006-01-02")] = true
		}

		if s.api != nil {
			fetched, err := s.api.FetchYear(ctx, year)
			if err != nil {
				s.logger.Warn("holiday api lookup failed, continuing without it",
					zap.Int("year", year),
					zap.Error(err),
				)
			}
			for _, h := range fetched {
				set[h.Date.Format("2006-01-02")] = true
			}
		}

		if s.rdb != nil && len(set) > 0 {
			dates := make([]string, 0, len(set))
			for d := range set {
				dates = append(dates, d)
			}
			if jsonData, err := json.Marshal(dates); err == nil {
				s.rdb.Set(ctx, cacheKey, jsonData, yearCacheTTL)
			}
		}

		return set, nil
	})

	return v.(map[string]bool)
}

func (s *service) invalidateYear(ctx context.Context, year int) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, yearCacheKey(year)).Err(); err != nil {
		s.logger.Warn("holiday cache invalidation failed",
			zap.Int("year", year),
			zap.Error(err),
		)
	}
}

func toSet(dates []string) map[string]bool {
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return set
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key value")
}
