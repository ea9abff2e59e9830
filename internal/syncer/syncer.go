package syncer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samvad-hq/mealbook/internal/domain"
	"github.com/samvad-hq/mealbook/pkg/publishers"
)

const defaultPageSize = 50

// Result summarises one sync pass.
type Result struct {
	Pages     int
	Seen      int
	Created   int
	Updated   int
	Deleted   int
	Published int
}

// Service mirrors the remote catalogue into the local store and emits an event
// for every meal that changed since the previous pass.
type Service struct {
	source    MealLister
	store     Store
	publisher EventPublisher
	log       Logger
	pageSize  int
}

// NewService wires a syncer. publisher and log may be nil.
func NewService(source MealLister, store Store, publisher EventPublisher, log Logger, pageSize int) *Service {
	if log == nil {
		log = noopLogger{}
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Service{
		source:    source,
		store:     store,
		publisher: publisher,
		log:       log,
		pageSize:  pageSize,
	}
}

// Run executes a single sync pass. Per-meal failures are collected and returned
// together; a listing failure aborts the pass. Local meals missing remotely are
// removed only after a complete, error-free listing.
func (s *Service) Run(ctx context.Context) (Result, error) {
	var res Result
	if s == nil || s.source == nil || s.store == nil {
		return res, fmt.Errorf("syncer service is not initialized")
	}

	var errs []error
	remoteIDs := make(map[string]struct{})
	complete := false

	for page := 1; ; page++ {
		if ctx.Err() != nil {
			s.log.WarnObj("sync cancelled", "sync_cancelled", map[string]any{"page": page})
			break
		}

		batch, err := s.source.ListMeals(ctx, domain.MealListParams{
			Page:      page,
			Limit:     s.pageSize,
			SortBy:    domain.SortByCreatedAt,
			SortOrder: domain.SortAsc,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("list meals page %d: %w", page, err))
			break
		}
		res.Pages++

		for _, meal := range batch.Items {
			remoteIDs[meal.ID] = struct{}{}
			res.Seen++
			if err := s.syncMeal(ctx, meal, &res); err != nil {
				errs = append(errs, err)
			}
		}

		if !batch.HasMore || len(batch.Items) == 0 {
			complete = true
			break
		}
	}

	if complete && len(errs) == 0 {
		if err := s.pruneMissing(ctx, remoteIDs, &res); err != nil {
			errs = append(errs, err)
		}
	}

	s.log.InfoObj("sync pass completed", "sync_result", map[string]any{
		"pages":     res.Pages,
		"seen":      res.Seen,
		"created":   res.Created,
		"updated":   res.Updated,
		"deleted":   res.Deleted,
		"published": res.Published,
		"errors":    len(errs),
	})
	return res, errors.Join(errs...)
}

// syncMeal publishes and stores a meal that differs from the local copy. The
// event goes out before the store write, so a failed publish leaves the meal
// pending for the next pass.
func (s *Service) syncMeal(ctx context.Context, meal domain.Meal, res *Result) error {
	fp, err := Fingerprint(meal)
	if err != nil {
		return fmt.Errorf("fingerprint meal %s: %w", meal.ID, err)
	}

	prev, seen, err := s.store.Fingerprint(meal.ID)
	if err != nil {
		// A failed lookup counts as unseen.
		s.log.WarnObj("fingerprint lookup failed", "sync_fingerprint_error", map[string]any{
			"meal_id": meal.ID,
			"error":   err.Error(),
		})
		seen = false
	}
	if seen && prev == fp {
		return s.touch(meal.ID, fp)
	}

	stored, exists, err := s.store.GetMeal(meal.ID)
	if err != nil {
		return fmt.Errorf("load meal %s: %w", meal.ID, err)
	}
	if exists && !seen {
		// Expired or missing fingerprint: compare against the stored copy.
		storedFP, err := Fingerprint(stored)
		if err == nil && storedFP == fp {
			return s.touch(meal.ID, fp)
		}
	}

	typ := publishers.EventMealCreated
	if exists {
		typ = publishers.EventMealUpdated
	}
	if err := s.publish(ctx, publishers.NewEvent(typ, meal), res); err != nil {
		return fmt.Errorf("publish %s for meal %s: %w", typ, meal.ID, err)
	}
	if err := s.store.PutMeal(meal); err != nil {
		return fmt.Errorf("store meal %s: %w", meal.ID, err)
	}
	if exists {
		res.Updated++
	} else {
		res.Created++
	}
	return s.touch(meal.ID, fp)
}

// touch records fp for id, restarting its retention window.
func (s *Service) touch(id, fp string) error {
	if err := s.store.MarkFingerprint(id, fp); err != nil {
		return fmt.Errorf("mark meal %s: %w", id, err)
	}
	return nil
}

func (s *Service) pruneMissing(ctx context.Context, remote map[string]struct{}, res *Result) error {
	local, err := s.store.ListMeals()
	if err != nil {
		return fmt.Errorf("list local meals: %w", err)
	}

	var errs []error
	for _, meal := range local {
		if _, ok := remote[meal.ID]; ok {
			continue
		}
		if _, err := s.store.DeleteMeal(meal.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete meal %s: %w", meal.ID, err))
			continue
		}
		res.Deleted++
		if err := s.publish(ctx, publishers.NewEvent(publishers.EventMealDeleted, meal), res); err != nil {
			errs = append(errs, fmt.Errorf("publish %s for meal %s: %w", publishers.EventMealDeleted, meal.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) publish(ctx context.Context, evt publishers.Event, res *Result) error {
	if s.publisher == nil {
		return nil
	}
	n, err := s.publisher.Publish(ctx, evt)
	res.Published += n
	return err
}

// Fingerprint returns a stable hash of the meal's JSON encoding.
func Fingerprint(meal domain.Meal) (string, error) {
	raw, err := json.Marshal(meal)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
