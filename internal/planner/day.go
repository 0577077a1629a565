package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/fieldcast/tourplan-backend-go/internal/geo"
	"github.com/fieldcast/tourplan-backend-go/internal/models"
	"github.com/fieldcast/tourplan-backend-go/internal/spatial"
)

// ErrPlacementCollision signals that a segment would overlap an
// existing one. Recoverable: the planner tries the next window.
var ErrPlacementCollision = errors.New("planner: placement collision")

// Coarse feasibility constants for gap-fill window checks. Actual legs
// come from the DistanceOracle once a window is accepted.
const (
	estimateSpeedKmh = 80.0
	estimatePadHours = 0.25
)

// DayPlanner places appointments, travel legs, breaks, and the
// overnight decision on a single day.
type DayPlanner struct {
	cfg    Config
	oracle *geo.DistanceOracle
}

// NewDayPlanner creates a day planner for one config.
func NewDayPlanner(cfg Config, oracle *geo.DistanceOracle) *DayPlanner {
	return &DayPlanner{cfg: cfg, oracle: oracle}
}

// DayRequest is one day's planning input.
type DayRequest struct {
	Day           *models.Day
	Candidates    []Candidate
	StartPoint    models.GeoPoint
	StartLabel    string
	FromHotel     bool
	IsFriday      bool
	WeekHoursUsed float64 // hours already committed on earlier days
}

// DayResult carries the candidates that did not fit, for requeueing,
// plus diagnostic notes for the report.
type DayResult struct {
	Remaining []Candidate
	Notes     []string
}

// Plan fills one day. Days that already contain fixed appointment
// segments are planned in gap-fill mode; empty days in nearest-first
// sequence mode.
func (p *DayPlanner) Plan(ctx context.Context, req DayRequest) DayResult {
	if hasAppointments(req.Day) {
		return p.planGapFill(ctx, req)
	}
	return p.planSequence(ctx, req)
}

// dayBudget is the usable hour budget for this day: the per-day cap,
// reduced by whatever the week has left.
func (p *DayPlanner) dayBudget(req DayRequest) float64 {
	budget := p.cfg.MaxDayHours
	if left := p.cfg.MaxWeekHours - req.WeekHoursUsed; left < budget {
		budget = left
	}
	if budget < 0 {
		return 0
	}
	return budget
}

// planSequence builds a day from scratch: nearest-first travel from the
// start location, one 3h appointment per stop.
func (p *DayPlanner) planSequence(ctx context.Context, req DayRequest) DayResult {
	var result DayResult
	budget := p.dayBudget(req)

	remaining := append([]Candidate{}, req.Candidates...)
	placed := make(map[string]Candidate)

	cur := req.StartPoint
	curLabel := req.StartLabel
	curTime := p.cfg.WorkStart
	first := true

	for len(remaining) > 0 {
		idx := nearestCandidate(cur, remaining)
		cand := remaining[idx]
		leg := p.oracle.Leg(ctx, cur, cand.Point)
		worked := req.Day.TotalHours()

		arrive := curTime.AddHours(leg.DurationHours)
		apptEnd := arrive.AddHours(p.cfg.AppointmentHours)
		added := (apptEnd - curTime).Hours()
		needBreak := RequiredBreakHours(worked+added) - req.Day.BreakHours()
		if needBreak < 0 {
			needBreak = 0
		}

		// A stop within return range must leave room in the budget for
		// the closing leg home. Far stops end in a hotel instead.
		legHome := p.oracle.Leg(ctx, cand.Point, p.cfg.HomeBase)
		farFromHome := legHome.DistanceKm > p.cfg.OvernightThresholdKm
		returnReserve := models.SnapUp(legHome.DurationHours).Hours()
		if farFromHome && !req.IsFriday {
			returnReserve = 0
		}

		if worked+added+needBreak+returnReserve > budget {
			// Travel to a far stop may still fit: drive on and sleep at
			// the destination so tomorrow starts in the right region.
			if !first && !req.IsFriday && farFromHome && worked+(arrive-curTime).Hours() <= budget {
				seg := travelSegment(models.SegmentTravel, curTime, arrive, cur, cand.Point, curLabel, cand.Label, leg.DistanceKm)
				if err := insertSegment(req.Day, seg); err == nil {
					setOvernight(req.Day, cand.Point, cand.Label, "Arbeitszeitlimit erreicht", arrive)
					result.Notes = append(result.Notes,
						fmt.Sprintf("%s: Übernachtung in %s (Arbeitszeitlimit erreicht)", req.Day.DayName, cand.Label))
				}
			}
			break
		}

		segType := models.SegmentTravel
		if first {
			segType = models.SegmentDeparture
			if req.FromHotel {
				segType = models.SegmentDepartureFromHotel
			}
		}

		travel := travelSegment(segType, curTime, arrive, cur, cand.Point, curLabel, cand.Label, leg.DistanceKm)
		if err := insertSegment(req.Day, travel); err != nil {
			log.Printf("DayPlanner: unexpected collision in sequence mode: %v", err)
			remaining = removeCandidate(remaining, idx)
			continue
		}

		appt := appointmentSegment(cand, arrive, apptEnd)
		if err := insertSegment(req.Day, appt); err != nil {
			log.Printf("DayPlanner: unexpected collision in sequence mode: %v", err)
			removeSegment(req.Day, travel)
			remaining = removeCandidate(remaining, idx)
			continue
		}

		placed[cand.Appointment.ID] = cand
		remaining = removeCandidate(remaining, idx)
		cur = cand.Point
		curLabel = cand.Label
		curTime = appt.End
		first = false

		curTime = p.ensureBreak(req.Day, curTime)
	}

	result.Remaining = remaining
	if req.Day.Overnight == nil {
		p.closeDay(ctx, req, cur, curLabel, curTime, placed, &result)
	}
	return result
}

// planGapFill places candidates into the open windows around fixed
// segments, then closes the day.
func (p *DayPlanner) planGapFill(ctx context.Context, req DayRequest) DayResult {
	var result DayResult
	budget := p.dayBudget(req)
	placed := make(map[string]Candidate)

	p.insertArrivalLeg(ctx, req)

	for _, cand := range req.Candidates {
		if !p.tryWindows(ctx, req, cand, budget) {
			result.Remaining = append(result.Remaining, cand)
			continue
		}
		placed[cand.Appointment.ID] = cand
	}

	lastLoc, lastLabel, lastEnd := lastAppointmentState(req.Day, req.StartPoint, req.StartLabel)
	// Days loaded entirely by fixed appointments never pass through the
	// flexible placement path, so top the break up here.
	lastEnd = p.ensureBreak(req.Day, lastEnd)
	if req.Day.Overnight == nil {
		p.closeDay(ctx, req, lastLoc, lastLabel, lastEnd, placed, &result)
	}
	return result
}

// insertArrivalLeg gives the first fixed appointment of a gap-fill day
// an inbound travel segment from the start location. Departures earlier
// than the nominal work start are allowed for distant fixed dates.
func (p *DayPlanner) insertArrivalLeg(ctx context.Context, req DayRequest) {
	first := firstAppointment(req.Day)
	if first == nil {
		return
	}
	leg := p.oracle.Leg(ctx, req.StartPoint, first.Location)
	if leg.DurationHours == 0 {
		return
	}
	dur := models.SnapUp(leg.DurationHours)
	start := first.Start - dur
	if start < 0 {
		return
	}

	segType := models.SegmentDeparture
	if req.FromHotel {
		segType = models.SegmentDepartureFromHotel
	}
	seg := travelSegment(segType, start, first.Start, req.StartPoint, first.Location, req.StartLabel, first.Customer, leg.DistanceKm)
	if err := insertSegment(req.Day, seg); err != nil {
		log.Printf("DayPlanner: arrival leg collides with fixed segments, skipping")
	}
}

// window is an open interval of a gap-fill day with the locations that
// bound it. nextLoc is nil for the trailing window.
type window struct {
	start, end models.Minutes
	prevLoc    models.GeoPoint
	prevLabel  string
	nextLoc    *models.GeoPoint
	nextLabel  string
}

// openWindows lists the free intervals of the day in order: leading
// window from work start, the gaps between segments, and the trailing
// window up to the day deadline.
func (p *DayPlanner) openWindows(req DayRequest, budget float64) []window {
	segs := req.Day.Segments
	deadline := p.cfg.WorkStart + models.Minutes(budget*60)

	var windows []window
	prevLoc := req.StartPoint
	prevLabel := req.StartLabel
	cursor := p.cfg.WorkStart

	for i := range segs {
		s := &segs[i]
		if s.Start > cursor {
			next := segmentLocation(s)
			windows = append(windows, window{
				start: cursor, end: s.Start,
				prevLoc: prevLoc, prevLabel: prevLabel,
				nextLoc: &next, nextLabel: segmentLabel(s),
			})
		}
		if s.End > cursor {
			cursor = s.End
		}
		if s.Type != models.SegmentBreak {
			prevLoc = segmentLocation(s)
			prevLabel = segmentLabel(s)
		}
	}

	if cursor < deadline {
		windows = append(windows, window{
			start: cursor, end: deadline,
			prevLoc: prevLoc, prevLabel: prevLabel,
		})
	}
	return windows
}

// tryWindows attempts to place one candidate into the first feasible
// open window. Collisions fall through to the next window.
func (p *DayPlanner) tryWindows(ctx context.Context, req DayRequest, cand Candidate, budget float64) bool {
	for _, w := range p.openWindows(req, budget) {
		travelIn := p.estimateHours(w.prevLoc, cand.Point)
		travelOut := 0.0
		if w.nextLoc != nil {
			travelOut = p.estimateHours(cand.Point, *w.nextLoc)
		} else if req.IsFriday {
			travelOut = p.estimateHours(cand.Point, p.cfg.HomeBase)
		}

		width := (w.end - w.start).Hours()
		if width < travelIn+p.cfg.AppointmentHours+travelOut {
			continue
		}

		if p.placeInWindow(ctx, req, cand, w, budget) {
			return true
		}
	}
	return false
}

// placeInWindow resolves real legs for an accepted window and inserts
// the travel and appointment segments, enforcing the collision rule.
func (p *DayPlanner) placeInWindow(ctx context.Context, req DayRequest, cand Candidate, w window, budget float64) bool {
	legIn := p.oracle.Leg(ctx, w.prevLoc, cand.Point)
	apptStart := models.SnapUp(w.start.Hours() + legIn.DurationHours)
	apptEnd := apptStart.AddHours(p.cfg.AppointmentHours)
	if apptEnd > w.end {
		return false
	}

	var legOut *models.Leg
	returnReserve := 0.0
	if w.nextLoc != nil {
		l := p.oracle.Leg(ctx, cand.Point, *w.nextLoc)
		legOut = &l
		if apptEnd.AddHours(l.DurationHours) > w.end {
			return false
		}
	} else {
		// Trailing window: the day will close after this stop, so the
		// return leg home must fit into the budget unless the stop is
		// far enough for an overnight.
		home := p.oracle.Leg(ctx, cand.Point, p.cfg.HomeBase)
		if req.IsFriday && apptEnd.AddHours(home.DurationHours) > p.cfg.FridayReturnBy {
			return false
		}
		if req.IsFriday || home.DistanceKm <= p.cfg.OvernightThresholdKm {
			returnReserve = models.SnapUp(home.DurationHours).Hours()
		}
	}

	added := (apptStart - w.start).Hours() + p.cfg.AppointmentHours
	if legOut != nil {
		outEnd := apptEnd.AddHours(legOut.DurationHours)
		added += (outEnd - apptEnd).Hours()
	}
	projected := req.Day.TotalHours() + added
	needBreak := RequiredBreakHours(projected) - req.Day.BreakHours()
	if needBreak < 0 {
		needBreak = 0
	}
	if projected+needBreak+returnReserve > budget {
		return false
	}

	travel := travelSegment(models.SegmentTravel, w.start, apptStart, w.prevLoc, cand.Point, w.prevLabel, cand.Label, legIn.DistanceKm)
	if err := insertSegment(req.Day, travel); err != nil {
		return false
	}
	appt := appointmentSegment(cand, apptStart, apptEnd)
	if err := insertSegment(req.Day, appt); err != nil {
		removeSegment(req.Day, travel)
		return false
	}
	if legOut != nil {
		out := travelSegment(models.SegmentTravel, apptEnd, apptEnd.AddHours(legOut.DurationHours),
			cand.Point, *w.nextLoc, cand.Label, w.nextLabel, legOut.DistanceKm)
		if err := insertSegment(req.Day, out); err != nil {
			removeSegment(req.Day, appt)
			removeSegment(req.Day, travel)
			return false
		}
	}

	p.ensureBreak(req.Day, apptEnd)
	return true
}

// closeDay ends a day with either a return leg to home base or an
// overnight decision. Friday forces the return, popping trailing
// flexible appointments when the 17:00 deadline would slip.
func (p *DayPlanner) closeDay(ctx context.Context, req DayRequest, lastLoc models.GeoPoint, lastLabel string, curTime models.Minutes, placed map[string]Candidate, result *DayResult) {
	day := req.Day

	if !hasAppointments(day) {
		// Nothing placed. A hotel start still needs the drive home.
		if req.FromHotel {
			leg := p.oracle.Leg(ctx, req.StartPoint, p.cfg.HomeBase)
			seg := travelSegment(models.SegmentReturn, p.cfg.WorkStart, p.cfg.WorkStart.AddHours(leg.DurationHours),
				req.StartPoint, p.cfg.HomeBase, req.StartLabel, p.cfg.HomeCity, leg.DistanceKm)
			if err := insertSegment(day, seg); err != nil {
				log.Printf("DayPlanner: failed to insert return leg: %v", err)
			}
		}
		return
	}

	legHome := p.oracle.Leg(ctx, lastLoc, p.cfg.HomeBase)
	arrival := curTime.AddHours(legHome.DurationHours)

	if req.IsFriday {
		for arrival > p.cfg.FridayReturnBy {
			pop := lastFlexibleAppointment(day)
			if pop == nil {
				// A fixed appointment pins the late return. Report the
				// constraint violation instead of rescheduling it.
				result.Notes = append(result.Notes,
					fmt.Sprintf("Freitag: Rückkehr %s nach %s verletzt die 17:00-Grenze (fixer Termin)", arrival, p.cfg.HomeCity))
				break
			}
			if cand, ok := placed[pop.AppointmentID]; ok {
				result.Remaining = append(result.Remaining, cand)
			}
			popTrailing(day, pop)

			lastLoc, lastLabel, curTime = lastAppointmentState(day, req.StartPoint, req.StartLabel)
			if !hasAppointments(day) {
				day.Segments = nil
				if req.FromHotel {
					leg := p.oracle.Leg(ctx, req.StartPoint, p.cfg.HomeBase)
					seg := travelSegment(models.SegmentReturn, p.cfg.WorkStart, p.cfg.WorkStart.AddHours(leg.DurationHours),
						req.StartPoint, p.cfg.HomeBase, req.StartLabel, p.cfg.HomeCity, leg.DistanceKm)
					if err := insertSegment(day, seg); err != nil {
						log.Printf("DayPlanner: failed to insert return leg: %v", err)
					}
				}
				return
			}
			legHome = p.oracle.Leg(ctx, lastLoc, p.cfg.HomeBase)
			arrival = curTime.AddHours(legHome.DurationHours)
		}

		seg := travelSegment(models.SegmentReturn, curTime, arrival, lastLoc, p.cfg.HomeBase, lastLabel, p.cfg.HomeCity, legHome.DistanceKm)
		if err := insertSegment(day, seg); err != nil {
			log.Printf("DayPlanner: failed to insert Friday return: %v", err)
		}
		return
	}

	deadline := p.cfg.WorkStart + models.Minutes(p.cfg.MaxDayHours*60)
	switch {
	case legHome.DistanceKm > p.cfg.OvernightThresholdKm:
		reason := fmt.Sprintf("%.0f km bis %s", legHome.DistanceKm, p.cfg.HomeCity)
		setOvernight(day, lastLoc, lastLabel, reason, curTime)
		result.Notes = append(result.Notes,
			fmt.Sprintf("%s: Übernachtung in %s (%s)", day.DayName, lastLabel, reason))
	case arrival > deadline:
		reason := fmt.Sprintf("Rückkehr erst %s", arrival)
		setOvernight(day, lastLoc, lastLabel, reason, curTime)
		result.Notes = append(result.Notes,
			fmt.Sprintf("%s: Übernachtung in %s (%s)", day.DayName, lastLabel, reason))
	default:
		seg := travelSegment(models.SegmentReturn, curTime, arrival, lastLoc, p.cfg.HomeBase, lastLabel, p.cfg.HomeCity, legHome.DistanceKm)
		if err := insertSegment(day, seg); err != nil {
			log.Printf("DayPlanner: failed to insert return leg: %v", err)
		}
	}
}

// ensureBreak tops the day's break time up to the legal requirement for
// the elapsed load, inserting a half-hour-aligned break right after the
// last appointment. A break that cannot fit without overlap is
// shortened; if even 30 minutes collide, it is dropped (the overlap
// rule wins).
func (p *DayPlanner) ensureBreak(day *models.Day, curTime models.Minutes) models.Minutes {
	required := RequiredBreakHours(day.TotalHours())
	missing := required - day.BreakHours()
	if missing <= 0 {
		return curTime
	}

	dur := math.Ceil(missing*2) / 2
	last := lastAppointment(day)
	if last == nil {
		return curTime
	}

	for dur >= 0.5 {
		seg := models.Segment{
			Type:  models.SegmentBreak,
			Start: last.End,
			End:   last.End.AddHours(dur),
		}
		if err := insertSegment(day, seg); err == nil {
			if seg.Start == curTime {
				return seg.End
			}
			return curTime
		}
		dur -= 0.5
	}
	log.Printf("DayPlanner: required break does not fit on %s, skipping", day.DayName)
	return curTime
}

func (p *DayPlanner) estimateHours(from, to models.GeoPoint) float64 {
	return spatial.HaversineKm(from, to)/estimateSpeedKmh + estimatePadHours
}

// insertSegment adds a segment to a day, keeping the list ordered by
// start time. Overlapping placements are refused.
func insertSegment(day *models.Day, seg models.Segment) error {
	for i := range day.Segments {
		if seg.Overlaps(&day.Segments[i]) {
			return fmt.Errorf("%w: %s vs %s", ErrPlacementCollision, seg.TimeRange(), day.Segments[i].TimeRange())
		}
	}
	day.Segments = append(day.Segments, seg)
	sort.SliceStable(day.Segments, func(a, b int) bool {
		return day.Segments[a].Start < day.Segments[b].Start
	})
	return nil
}

// removeSegment deletes the first segment equal in type and interval.
func removeSegment(day *models.Day, seg models.Segment) {
	for i := range day.Segments {
		s := &day.Segments[i]
		if s.Type == seg.Type && s.Start == seg.Start && s.End == seg.End {
			day.Segments = append(day.Segments[:i], day.Segments[i+1:]...)
			return
		}
	}
}

func travelSegment(segType string, start, end models.Minutes, from, to models.GeoPoint, fromLabel, toLabel string, km float64) models.Segment {
	return models.Segment{
		Type:       segType,
		Start:      start,
		End:        end,
		From:       from,
		To:         to,
		FromLabel:  fromLabel,
		ToLabel:    toLabel,
		DistanceKm: km,
	}
}

func appointmentSegment(cand Candidate, start, end models.Minutes) models.Segment {
	return models.Segment{
		Type:          models.SegmentAppointment,
		Start:         start,
		End:           end,
		AppointmentID: cand.Appointment.ID,
		Customer:      cand.Appointment.Customer,
		Address:       cand.Appointment.Address,
		Status:        cand.Appointment.Status,
		Fixed:         cand.Appointment.IsFixed,
		Location:      cand.Point,
	}
}

func setOvernight(day *models.Day, point models.GeoPoint, city, reason string, lastEnd models.Minutes) {
	day.Overnight = &models.Overnight{
		City:       city,
		Point:      point,
		Reason:     reason,
		CheckIn:    lastEnd.AddHours(0.5),
		HotelLabel: "Hotel " + city,
	}
}

func hasAppointments(day *models.Day) bool {
	for i := range day.Segments {
		if day.Segments[i].Type == models.SegmentAppointment {
			return true
		}
	}
	return false
}

func firstAppointment(day *models.Day) *models.Segment {
	for i := range day.Segments {
		if day.Segments[i].Type == models.SegmentAppointment {
			return &day.Segments[i]
		}
	}
	return nil
}

func lastAppointment(day *models.Day) *models.Segment {
	for i := len(day.Segments) - 1; i >= 0; i-- {
		if day.Segments[i].Type == models.SegmentAppointment {
			return &day.Segments[i]
		}
	}
	return nil
}

// lastFlexibleAppointment returns the latest non-fixed appointment, or
// nil when only fixed ones remain.
func lastFlexibleAppointment(day *models.Day) *models.Segment {
	for i := len(day.Segments) - 1; i >= 0; i-- {
		s := &day.Segments[i]
		if s.Type == models.SegmentAppointment {
			if s.Fixed {
				return nil
			}
			return s
		}
	}
	return nil
}

// popTrailing removes an appointment segment and everything scheduled
// after the appointment that precedes it.
func popTrailing(day *models.Day, appt *models.Segment) {
	cut := len(day.Segments)
	for i := range day.Segments {
		if day.Segments[i].Type == models.SegmentAppointment &&
			day.Segments[i].AppointmentID == appt.AppointmentID {
			cut = i
			break
		}
	}
	// Also drop the inbound travel leg directly before it.
	if cut > 0 && day.Segments[cut-1].IsTravel() {
		cut--
	}
	day.Segments = day.Segments[:cut]
}

// lastAppointmentState reports the location, label, and end time the
// day currently stands at: the last appointment (or any trailing break
// after it), or the day's start state when nothing is placed.
func lastAppointmentState(day *models.Day, startPoint models.GeoPoint, startLabel string) (models.GeoPoint, string, models.Minutes) {
	appt := lastAppointment(day)
	if appt == nil {
		return startPoint, startLabel, 0
	}
	end := appt.End
	for i := range day.Segments {
		s := &day.Segments[i]
		if s.Type == models.SegmentBreak && s.Start >= appt.End && s.End > end {
			end = s.End
		}
	}
	label := appt.Customer
	return appt.Location, label, end
}

func segmentLocation(s *models.Segment) models.GeoPoint {
	if s.IsTravel() {
		return s.To
	}
	return s.Location
}

func segmentLabel(s *models.Segment) string {
	if s.IsTravel() {
		return s.ToLabel
	}
	return s.Customer
}

func nearestCandidate(from models.GeoPoint, candidates []Candidate) int {
	best := 0
	bestDist := spatial.HaversineKm(from, candidates[0].Point)
	for i := 1; i < len(candidates); i++ {
		if d := spatial.HaversineKm(from, candidates[i].Point); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func removeCandidate(candidates []Candidate, idx int) []Candidate {
	return append(candidates[:idx:idx], candidates[idx+1:]...)
}
