package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"cockpit-server/internal/modules/perf/pressure"
	"cockpit-server/internal/modules/perf/repository"
	"cockpit-server/internal/modules/perf/status"
	"cockpit-server/internal/modules/perf/types"
	"cockpit-server/internal/mqtt"
	"cockpit-server/internal/perfapi"
)

// EventPublisher receives cockpit events. *mqtt.Publisher satisfies it.
type EventPublisher interface {
	Publish(event string, data any) error
}

type TakeoffResult struct {
	N1 *float64
}

type TrimResult struct {
	Trim *float64
	// Accepted is false when the service did not answer "Success"; the
	// result must then be discarded.
	Accepted bool
	Message  string
}

type WeightAndCG struct {
	Weight *float64
	CG     *float64
}

type Service struct {
	api       perfapi.API
	repo      repository.CalculationRepository
	events    EventPublisher
	board     *status.Board
	validator pressure.Validator
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	api perfapi.API,
	repo repository.CalculationRepository,
	events EventPublisher,
	board *status.Board,
	validator pressure.Validator,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:       api,
		repo:      repo,
		events:    events,
		board:     board,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// ValidatePressure evaluates a reading from scratch.
func (s *Service) ValidatePressure(unit types.PressureUnit, text string) types.PressureReading {
	return s.validator.Reading(unit, text)
}

// Takeoff asks the performance service for the derated N1. An invalid
// pressure reading is logged but does not stop the request.
func (s *Service) Takeoff(ctx context.Context, in types.TakeoffInputs, reading types.PressureReading) (TakeoffResult, error) {
	if !s.validator.Valid(reading.Unit, reading.Text) {
		s.logger.Warn("takeoff submitted with invalid pressure setting",
			"unit", reading.Unit,
			"text", reading.Text,
		)
	}

	req := perfapi.TakeoffRequest{
		Derate:        string(in.Derate),
		AssumedTemp:   in.AssumedTemp,
		PressAltitude: in.PressureAltitude,
		OAT:           in.OAT,
		Bleeds:        in.Bleeds,
	}
	resp, err := s.api.TakeoffDerate(ctx, req)
	if err != nil {
		return TakeoffResult{}, fmt.Errorf("takeoff derate: %w", err)
	}

	s.record(ctx, types.KindTakeoff, in.Derate, req, resp.N1, resp.Message)
	if resp.N1 != nil {
		s.publish(mqtt.EventTakeoff, map[string]any{
			"derate":         in.Derate,
			"assumed_temp":   in.AssumedTemp,
			"press_altitude": in.PressureAltitude,
			"oat":            in.OAT,
			"bleeds":         in.Bleeds,
			"n1":             *resp.N1,
		})
	}
	return TakeoffResult{N1: resp.N1}, nil
}

// SetN1 sends n1 to the simulator and posts the reply message to the status
// board, where it clears itself after status.ClearAfter.
func (s *Service) SetN1(ctx context.Context, n1 float64) (string, error) {
	req := perfapi.SetDerateRequest{DerateN1: n1}
	resp, err := s.api.SetDerate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("set derate: %w", err)
	}

	s.board.Set(resp.Message)
	s.record(ctx, types.KindSetN1, "", req, &n1, resp.Message)
	s.publish(mqtt.EventN1Set, map[string]any{
		"n1":      n1,
		"message": resp.Message,
		"success": bool(resp.Success),
	})
	return resp.Message, nil
}

// Trim asks for the stabilizer trim. Answers other than "Success" come back
// with Accepted false.
func (s *Service) Trim(ctx context.Context, in types.TrimInputs) (TrimResult, error) {
	req := perfapi.TrimRequest{Weight: in.Weight, CG: in.CG, Derate: string(in.Derate)}
	resp, err := s.api.Trim(ctx, req)
	if err != nil {
		return TrimResult{}, fmt.Errorf("trim: %w", err)
	}

	if !resp.OK() {
		s.logger.Info("trim not accepted", "derate", in.Derate, "message", resp.Message)
		s.record(ctx, types.KindTrim, in.Derate, req, nil, resp.Message)
		return TrimResult{Accepted: false, Message: resp.Message}, nil
	}

	s.record(ctx, types.KindTrim, in.Derate, req, resp.Trim, resp.Message)
	if resp.Trim != nil {
		s.publish(mqtt.EventTrim, map[string]any{
			"weight": in.Weight,
			"cg":     in.CG,
			"derate": in.Derate,
			"trim":   *resp.Trim,
		})
	}
	return TrimResult{Trim: resp.Trim, Accepted: true, Message: resp.Message}, nil
}

// FetchWeightAndCG reads the live aircraft weight and CG (%MAC), weight first.
func (s *Service) FetchWeightAndCG(ctx context.Context) (WeightAndCG, error) {
	weight, err := s.api.GetWeight(ctx)
	if err != nil {
		return WeightAndCG{}, fmt.Errorf("get weight: %w", err)
	}
	cg, err := s.api.GetCG(ctx)
	if err != nil {
		return WeightAndCG{}, fmt.Errorf("get cg: %w", err)
	}
	if weight.Weight == nil || cg.CGMAC == nil {
		s.logger.Warn("simulator values incomplete",
			"weight_message", weight.Message,
			"cg_message", cg.Message,
		)
	}
	return WeightAndCG{Weight: weight.Weight, CG: cg.CGMAC}, nil
}

// Status returns the status board message and the time left before it clears.
func (s *Service) Status() (string, time.Duration) {
	return s.board.Current()
}

func (s *Service) RecentCalculations(ctx context.Context, kind types.Kind, limit int) ([]types.Calculation, error) {
	return s.repo.ListRecent(ctx, kind, limit)
}

// record appends an outcome to the calculation log. Failures are logged only.
func (s *Service) record(ctx context.Context, kind types.Kind, derate types.Derate, inputs any, result *float64, message string) {
	if s.repo == nil {
		return
	}
	raw, err := json.Marshal(inputs)
	if err != nil {
		s.logger.Error("encode calculation inputs", "kind", kind, "error", err)
		return
	}
	// Recorded even when the page request has been cancelled.
	ctx = context.WithoutCancel(ctx)
	if _, err := s.repo.InsertCalculation(ctx, types.Calculation{
		Kind:      kind,
		Derate:    derate,
		Inputs:    raw,
		Result:    result,
		Message:   message,
		CreatedAt: s.now(),
	}); err != nil {
		s.logger.Error("record calculation", "kind", kind, "error", err)
	}
}

func (s *Service) publish(event string, data any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(event, data); err != nil {
		s.logger.Warn("publish event failed", "event", event, "error", err)
	}
}
