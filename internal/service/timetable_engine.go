package service

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/noah-isme/uniops-api/internal/models"
)

// Scoring weights for the placement engine. Hard rules additionally flag the
// candidate as eliminated, so a pile of soft bonuses can never resurrect a
// slot that violates a hard constraint.
const (
	scoreCapacityFit     = 5
	scoreTeacherFree     = 10
	scoreNewRoom         = 50
	scoreRoomVariety     = 100
	scoreParallelSpread  = 50
	scoreCompactWeek     = 100
	scoreFiveDayWeek     = 50
	penaltyEliminate     = 1000
	penaltySpacing       = 500
	penaltyRoomReuse     = 500
	penaltySharedRoom    = 200
	penaltyBusyDay       = 500
	penaltyDailyCap      = 10000
	penaltyScatteredWeek = 50
)

// topSlotShare controls how many of the best-scoring candidates feed the
// randomized pick: the top fifth, never fewer than one.
const topSlotShare = 5

var dayNameIndex = map[string]int{
	"MONDAY":    1,
	"TUESDAY":   2,
	"WEDNESDAY": 3,
	"THURSDAY":  4,
	"FRIDAY":    5,
	"SATURDAY":  6,
	"SUNDAY":    7,
}

var dayIndexName = map[int]string{
	1: "MONDAY",
	2: "TUESDAY",
	3: "WEDNESDAY",
	4: "THURSDAY",
	5: "FRIDAY",
	6: "SATURDAY",
	7: "SUNDAY",
}

func dayStringToIndex(name string) int {
	return dayNameIndex[strings.ToUpper(strings.TrimSpace(name))]
}

func dayIndexToName(day int) string {
	if name, ok := dayIndexName[day]; ok {
		return name
	}
	return "MONDAY"
}

// slotIndex holds the read-only room/period lookups built once per run.
type slotIndex struct {
	rooms    []models.Room
	periods  []models.Period
	capacity map[string]int
	dayOrd   map[string]int
	number   map[string]int
}

func newSlotIndex(rooms []models.Room, periods []models.Period) (*slotIndex, error) {
	idx := &slotIndex{
		rooms:    rooms,
		periods:  periods,
		capacity: make(map[string]int, len(rooms)),
		dayOrd:   make(map[string]int, len(periods)),
		number:   make(map[string]int, len(periods)),
	}
	for _, room := range rooms {
		idx.capacity[room.ID] = room.Capacity
	}
	for _, period := range periods {
		day := dayStringToIndex(period.DayOfWeek)
		if day == 0 {
			return nil, fmt.Errorf("period %s has unknown weekday %q", period.ID, period.DayOfWeek)
		}
		idx.dayOrd[period.ID] = day
		idx.number[period.ID] = period.Number
	}
	return idx, nil
}

func (idx *slotIndex) capacityOf(roomID string) int {
	return idx.capacity[roomID]
}

func (idx *slotIndex) dayOf(periodID string) int {
	return idx.dayOrd[periodID]
}

// generationState is the occupancy arena owned by exactly one run. It is
// mutated as sessions are placed and must never be shared across runs.
type generationState struct {
	teacherBusy map[string]map[string]struct{}
	roomBusy    map[string]map[string]struct{}
	placed      []models.TemplateAssignment
	sections    map[string]models.CourseSection
}

func newGenerationState(sections []models.CourseSection) *generationState {
	byID := make(map[string]models.CourseSection, len(sections))
	for _, sec := range sections {
		byID[sec.ID] = sec
	}
	return &generationState{
		teacherBusy: make(map[string]map[string]struct{}),
		roomBusy:    make(map[string]map[string]struct{}),
		sections:    byID,
	}
}

func (st *generationState) teacherHas(teacherID, periodID string) bool {
	_, ok := st.teacherBusy[teacherID][periodID]
	return ok
}

func (st *generationState) roomHas(roomID, periodID string) bool {
	_, ok := st.roomBusy[roomID][periodID]
	return ok
}

func (st *generationState) reserve(sec models.CourseSection, a models.TemplateAssignment) {
	if st.teacherBusy[sec.TeacherID] == nil {
		st.teacherBusy[sec.TeacherID] = make(map[string]struct{})
	}
	st.teacherBusy[sec.TeacherID][a.PeriodID] = struct{}{}
	if st.roomBusy[a.RoomID] == nil {
		st.roomBusy[a.RoomID] = make(map[string]struct{})
	}
	st.roomBusy[a.RoomID][a.PeriodID] = struct{}{}
	st.placed = append(st.placed, a)
}

func (st *generationState) sectionPeriods(sectionID string) []string {
	var periods []string
	for _, a := range st.placed {
		if a.SectionID == sectionID {
			periods = append(periods, a.PeriodID)
		}
	}
	return periods
}

func (st *generationState) sectionRooms(sectionID string) []string {
	var rooms []string
	for _, a := range st.placed {
		if a.SectionID == sectionID {
			rooms = append(rooms, a.RoomID)
		}
	}
	return rooms
}

func (st *generationState) assignmentsInPeriod(periodID string) []models.TemplateAssignment {
	var hits []models.TemplateAssignment
	for _, a := range st.placed {
		if a.PeriodID == periodID {
			hits = append(hits, a)
		}
	}
	return hits
}

// timetableEngine scores every (room, period) pair for one session of one
// section against the shared occupancy state.
type timetableEngine struct {
	idx   *slotIndex
	state *generationState
	rng   *rand.Rand
}

func newTimetableEngine(rooms []models.Room, periods []models.Period, sections []models.CourseSection, rng *rand.Rand) (*timetableEngine, error) {
	idx, err := newSlotIndex(rooms, periods)
	if err != nil {
		return nil, err
	}
	return &timetableEngine{
		idx:   idx,
		state: newGenerationState(sections),
		rng:   rng,
	}, nil
}

func (e *timetableEngine) eligibleRoomCount(sec models.CourseSection) int {
	count := 0
	for _, room := range e.idx.rooms {
		if sec.MaxStudents <= room.Capacity {
			count++
		}
	}
	return count
}

// placeSection schedules every session the section needs, feeding each
// placement back into the occupancy state before scoring the next one.
// Infeasible sessions are skipped with a diagnostic; the run never aborts.
func (e *timetableEngine) placeSection(sec models.CourseSection) ([]models.TemplateAssignment, []models.SectionDiagnostic) {
	needed := sec.SessionsNeeded()

	eligible := e.eligibleRoomCount(sec)
	if eligible == 0 {
		return nil, []models.SectionDiagnostic{{
			SectionID: sec.ID,
			Reason:    fmt.Sprintf("no room can seat %d students", sec.MaxStudents),
		}}
	}
	var diagnostics []models.SectionDiagnostic
	if eligible < needed {
		diagnostics = append(diagnostics, models.SectionDiagnostic{
			SectionID: sec.ID,
			Reason:    fmt.Sprintf("only %d capacity-eligible room(s) for %d weekly sessions", eligible, needed),
		})
		needed = eligible
	}

	var assignments []models.TemplateAssignment
	for i := 0; i < needed; i++ {
		candidate, ok := e.pickSlot(sec, needed)
		if !ok {
			diagnostics = append(diagnostics, models.SectionDiagnostic{
				SectionID: sec.ID,
				Reason:    fmt.Sprintf("no feasible slot for session %d of %d", i+1, needed),
			})
			continue
		}
		a := models.TemplateAssignment{
			SectionID: sec.ID,
			RoomID:    candidate.roomID,
			PeriodID:  candidate.periodID,
		}
		e.state.reserve(sec, a)
		assignments = append(assignments, a)
	}
	return assignments, diagnostics
}

type slotCandidate struct {
	roomID   string
	periodID string
	score    int
	hard     bool
}

// pickSlot enumerates every (room, period) pair, drops hard-eliminated
// candidates, keeps the top fifth by score and picks uniformly at random,
// preferring rooms the section has not used yet this week.
func (e *timetableEngine) pickSlot(sec models.CourseSection, sessionsNeeded int) (slotCandidate, bool) {
	var valid []slotCandidate
	for _, room := range e.idx.rooms {
		for _, period := range e.idx.periods {
			candidate := e.scoreCandidate(sec, sessionsNeeded, room, period)
			if candidate.hard || candidate.score <= -penaltyEliminate {
				continue
			}
			valid = append(valid, candidate)
		}
	}
	if len(valid) == 0 {
		return slotCandidate{}, false
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].score > valid[j].score
	})
	topCount := len(valid) / topSlotShare
	if topCount < 1 {
		topCount = 1
	}
	top := valid[:topCount]

	usedRooms := make(map[string]struct{})
	for _, roomID := range e.state.sectionRooms(sec.ID) {
		usedRooms[roomID] = struct{}{}
	}
	var preferred []slotCandidate
	for _, candidate := range top {
		if _, used := usedRooms[candidate.roomID]; !used {
			preferred = append(preferred, candidate)
		}
	}
	pool := top
	if len(preferred) > 0 {
		pool = preferred
	}
	return pool[e.rng.Intn(len(pool))], true
}

func (e *timetableEngine) scoreCandidate(sec models.CourseSection, sessionsNeeded int, room models.Room, period models.Period) slotCandidate {
	candidate := slotCandidate{roomID: room.ID, periodID: period.ID}
	score := 0
	hard := false

	// Capacity.
	if sec.MaxStudents <= e.idx.capacityOf(room.ID) {
		score += scoreCapacityFit
	} else {
		score -= penaltyEliminate
		hard = true
	}

	// Teacher availability.
	if !e.state.teacherHas(sec.TeacherID, period.ID) {
		score += scoreTeacherFree
	} else {
		score -= penaltyEliminate
		hard = true
	}

	// Room availability. An occupied room survives only when every occupant
	// is a different section of the same course taught by a different
	// teacher; the shared-room penalty is then applied by the cross-section
	// rule below.
	if e.state.roomHas(room.ID, period.ID) && !e.sharedRoomAllowed(sec, room.ID, period.ID) {
		score -= penaltyEliminate
		hard = true
	}

	existingPeriods := e.state.sectionPeriods(sec.ID)
	if containsString(existingPeriods, period.ID) {
		// The section already meets in this exact period.
		score -= penaltyEliminate
		hard = true
	} else if len(existingPeriods) > 0 && sec.Credits >= 3 {
		// Multi-session courses keep at least one day between meetings.
		day := e.idx.dayOf(period.ID)
		for _, existing := range existingPeriods {
			diff := day - e.idx.dayOf(existing)
			if diff < 0 {
				diff = -diff
			}
			if diff < 2 {
				score -= penaltySpacing
			}
		}
	}

	// Room diversity.
	existingRooms := e.state.sectionRooms(sec.ID)
	if containsString(existingRooms, room.ID) {
		score -= penaltyRoomReuse
	} else {
		score += scoreNewRoom
		if uniqueCount(existingRooms) < sessionsNeeded {
			score += scoreRoomVariety
		}
	}

	// Cross-section interaction for parallel sections of the same course.
	for _, placed := range e.state.assignmentsInPeriod(period.ID) {
		if placed.SectionID == sec.ID {
			continue
		}
		other, ok := e.state.sections[placed.SectionID]
		if !ok || other.CourseID != sec.CourseID {
			continue
		}
		if other.TeacherID == sec.TeacherID {
			score -= penaltyEliminate
			hard = true
		} else if placed.RoomID == room.ID {
			score -= penaltySharedRoom
		} else {
			score += scoreParallelSpread
		}
	}

	// Daily load cap: never more than three sessions on one weekday.
	day := e.idx.dayOf(period.ID)
	onDay := 0
	for _, existing := range existingPeriods {
		if e.idx.dayOf(existing) == day {
			onDay++
		}
	}
	if onDay >= 3 {
		score -= penaltyDailyCap
		hard = true
	} else if onDay == 2 {
		score -= penaltyBusyDay
	}

	// Weekly compactness: reward leaving at least one rest day.
	days := make(map[int]struct{})
	for _, existing := range existingPeriods {
		days[e.idx.dayOf(existing)] = struct{}{}
	}
	days[day] = struct{}{}
	switch {
	case len(days) <= 4:
		score += scoreCompactWeek
	case len(days) == 5:
		score += scoreFiveDayWeek
	default:
		score -= penaltyScatteredWeek
	}

	candidate.score = score
	candidate.hard = hard
	return candidate
}

// sharedRoomAllowed reports whether every current occupant of (room, period)
// is a different section of the same course with a different teacher.
func (e *timetableEngine) sharedRoomAllowed(sec models.CourseSection, roomID, periodID string) bool {
	occupants := 0
	for _, placed := range e.state.placed {
		if placed.RoomID != roomID || placed.PeriodID != periodID {
			continue
		}
		occupants++
		if placed.SectionID == sec.ID {
			return false
		}
		other, ok := e.state.sections[placed.SectionID]
		if !ok || other.CourseID != sec.CourseID || other.TeacherID == sec.TeacherID {
			return false
		}
	}
	return occupants > 0
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func uniqueCount(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
