package models

import (
	"strings"
	"time"
)

type FamilyRole string

const (
	FamilyRoleParent      FamilyRole = "parent"
	FamilyRoleTeen        FamilyRole = "teen"
	FamilyRoleKid         FamilyRole = "kid"
	FamilyRoleGrandparent FamilyRole = "grandparent"
	FamilyRoleMember      FamilyRole = "member"
)

func (role FamilyRole) Valid() bool {
	switch role {
	case FamilyRoleParent, FamilyRoleTeen, FamilyRoleKid, FamilyRoleGrandparent, FamilyRoleMember:
		return true
	}
	return false
}

type Frequency string

const (
	FrequencyOneTime  Frequency = "ONE_TIME"
	FrequencyDaily    Frequency = "DAILY"
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyBiweekly Frequency = "BIWEEKLY"
	FrequencyMonthly  Frequency = "MONTHLY"
	FrequencyCustom   Frequency = "CUSTOM"
)

type Eligibility string

const (
	EligibilityAll      Eligibility = "ALL"
	EligibilitySelected Eligibility = "SELECTED"
)

type AssignmentMode string

const (
	AssignmentModeAI       AssignmentMode = "ai"
	AssignmentModeRotate   AssignmentMode = "rotate"
	AssignmentModeSpecific AssignmentMode = "specific"
)

// Unassigned is the assignee name stored on instances nobody has picked up yet.
const Unassigned = "Unassigned"

type DayAvailability struct {
	Available bool   `json:"available"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
}

// WeeklyAvailability is keyed by lower-case weekday name ("monday").
type WeeklyAvailability map[string]DayAvailability

type Member struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	FamilyRole   FamilyRole         `json:"role"`
	WorkingHours string             `json:"workingHours,omitempty"`
	Availability WeeklyAvailability `json:"availability,omitempty"`
	Abilities    []string           `json:"abilities,omitempty"`
	Likes        []string           `json:"likes,omitempty"`
	Dislikes     []string           `json:"dislikes,omitempty"`
	Restrictions string             `json:"restrictions,omitempty"`

	OIDCSubject string `json:"-"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	IsAdmin     bool   `json:"isAdmin"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasWorkingHours reports whether the member declared any working hours.
func (member Member) HasWorkingHours() bool {
	return strings.TrimSpace(member.WorkingHours) != ""
}

type TaskDefinition struct {
	ID                  string         `json:"id"`
	Title               string         `json:"title"`
	Description         string         `json:"description,omitempty"`
	IsRecurring         bool           `json:"isRecurring"`
	Frequency           Frequency      `json:"frequency"`
	CustomEveryDays     *int           `json:"customEveryDays,omitempty"`
	OccurrencesPerWeek  *int           `json:"occurrencesPerWeek,omitempty"`
	Eligibility         Eligibility    `json:"eligibility"`
	EligibleMemberIDs   []string       `json:"eligibleMemberIds,omitempty"`
	PreferredAssigneeID *string        `json:"preferredAssigneeId,omitempty"`
	AssignmentMode      AssignmentMode `json:"assignmentMode"`
	CreatedByMemberID   string         `json:"createdByMemberId,omitempty"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

// Restricted reports whether only an explicit subset of members may take the task.
func (definition TaskDefinition) Restricted() bool {
	return definition.Eligibility == EligibilitySelected
}

type TaskInstance struct {
	ID           string     `json:"id"`
	DefinitionID *string    `json:"definitionId,omitempty"`
	Title        string     `json:"title"`
	Weekday      string     `json:"weekday,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	AssigneeID   *string    `json:"assigneeId,omitempty"`
	AssigneeName string     `json:"assignee"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// IsAssigned reports whether the instance has a real assignee.
func (instance TaskInstance) IsAssigned() bool {
	return instance.AssigneeID != nil || (instance.AssigneeName != "" && instance.AssigneeName != Unassigned)
}

type Occurrence struct {
	StartsAt time.Time  `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt,omitempty"`
}

type RecurrenceRule struct {
	Pattern  RecurrencePattern
	Interval int
	StartsAt time.Time
	EndsAt   *time.Time
	Until    *time.Time
}

// Recurring reports whether the rule produces more than its original occurrence.
func (rule RecurrenceRule) Recurring() bool {
	return rule.Pattern != nil
}

type Event struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Description       string            `json:"description,omitempty"`
	Location          string            `json:"location,omitempty"`
	StartTime         time.Time         `json:"startTime"`
	EndTime           *time.Time        `json:"endTime,omitempty"`
	AllDay            bool              `json:"allDay"`
	Recurrence        RecurrencePattern `json:"-"`
	RecurrenceEvery   int               `json:"recurrenceInterval,omitempty"`
	RecurrenceUntil   *time.Time        `json:"recurrenceUntil,omitempty"`
	CreatedByMemberID string            `json:"createdByMemberId,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// Rule returns the recurrence rule anchored at the event's own start and end.
func (event Event) Rule() RecurrenceRule {
	return RecurrenceRule{
		Pattern:  event.Recurrence,
		Interval: event.RecurrenceEvery,
		StartsAt: event.StartTime,
		EndsAt:   event.EndTime,
		Until:    event.RecurrenceUntil,
	}
}

type AssignmentSuggestion struct {
	TaskID            string  `json:"choreId"`
	TaskTitle         string  `json:"choreTitle"`
	AssigneeID        *string `json:"assigneeId,omitempty"`
	SuggestedAssignee *string `json:"suggestedAssignee"`
	Reasoning         string  `json:"reasoning"`
	Error             bool    `json:"error,omitempty"`
}

// Named reports whether the suggestion picked a concrete member.
func (suggestion AssignmentSuggestion) Named() bool {
	return suggestion.AssigneeID != nil && suggestion.SuggestedAssignee != nil
}

type TokenScope string

const (
	// TokenScopeAPI grants bearer access to the JSON API as the token's creator.
	TokenScopeAPI TokenScope = "api"
	// TokenScopeICal only unlocks the calendar feed.
	TokenScopeICal TokenScope = "ical"
)

type APIToken struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	TokenHash         string     `json:"-"`
	Scope             TokenScope `json:"scope"`
	CreatedByMemberID string     `json:"createdByMemberId"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Expired reports whether the token has an expiry at or before now.
func (token APIToken) Expired(now time.Time) bool {
	return token.ExpiresAt != nil && !token.ExpiresAt.After(now)
}
