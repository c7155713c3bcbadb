package resume

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Store holds the resume data graph. Mutations are synchronous; observers are
// called after each mutation, in mutation order, with a copy of the new state.
// Observers must not mutate the store from inside OnChange.
type Store struct {
	IDGenerator func() string

	mu        sync.Mutex
	notifyMu  sync.Mutex
	data      Data
	observers map[int]Observer
	nextObs   int
}

// NewStore creates a store seeded with the default data.
func NewStore() *Store {
	return &Store{
		IDGenerator: uuid.NewString,
		data:        DefaultData(),
		observers:   make(map[int]Observer),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Subscribe registers an observer and returns its cancel function.
func (s *Store) Subscribe(obs Observer) func() {
	if obs == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = obs
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// UpdatePersonalInfo applies the set fields of patch.
func (s *Store) UpdatePersonalInfo(ctx context.Context, patch PersonalInfoPatch) (PersonalInfo, error) {
	var out PersonalInfo
	err := s.mutate(ctx, func(d *Data) error {
		applyString(&d.PersonalInfo.FullName, patch.FullName)
		applyString(&d.PersonalInfo.Email, patch.Email)
		applyString(&d.PersonalInfo.Phone, patch.Phone)
		applyString(&d.PersonalInfo.Location, patch.Location)
		applyString(&d.PersonalInfo.LinkedIn, patch.LinkedIn)
		applyString(&d.PersonalInfo.GitHub, patch.GitHub)
		applyString(&d.PersonalInfo.Portfolio, patch.Portfolio)
		applyString(&d.PersonalInfo.Summary, patch.Summary)
		out = d.PersonalInfo
		return nil
	})
	return out, err
}

// AddEducation appends an entry with a fresh ID.
func (s *Store) AddEducation(ctx context.Context, edu Education) (Education, error) {
	err := s.mutate(ctx, func(d *Data) error {
		edu.ID = s.newID()
		edu.Achievements = cloneStrings(edu.Achievements)
		d.Education = append(d.Education, edu)
		return nil
	})
	return edu, err
}

// UpdateEducation applies patch to the entry with id.
func (s *Store) UpdateEducation(ctx context.Context, id string, patch EducationPatch) (Education, error) {
	var out Education
	err := s.mutate(ctx, func(d *Data) error {
		idx := indexOfEducation(d.Education, id)
		if idx < 0 {
			return NewError(KindNotFound, fmt.Sprintf("education %q not found", id), nil)
		}
		edu := &d.Education[idx]
		applyString(&edu.Institution, patch.Institution)
		applyString(&edu.Degree, patch.Degree)
		applyString(&edu.Field, patch.Field)
		applyString(&edu.StartDate, patch.StartDate)
		applyString(&edu.EndDate, patch.EndDate)
		applyString(&edu.GPA, patch.GPA)
		if patch.Achievements != nil {
			edu.Achievements = cloneStrings(*patch.Achievements)
		}
		out = *edu
		return nil
	})
	return out, err
}

// RemoveEducation deletes the entry with id.
func (s *Store) RemoveEducation(ctx context.Context, id string) error {
	return s.mutate(ctx, func(d *Data) error {
		idx := indexOfEducation(d.Education, id)
		if idx < 0 {
			return NewError(KindNotFound, fmt.Sprintf("education %q not found", id), nil)
		}
		d.Education = append(d.Education[:idx:idx], d.Education[idx+1:]...)
		return nil
	})
}

// AddExperience appends an entry with a fresh ID.
func (s *Store) AddExperience(ctx context.Context, exp Experience) (Experience, error) {
	err := s.mutate(ctx, func(d *Data) error {
		exp.ID = s.newID()
		exp.Description = cloneStrings(exp.Description)
		if exp.Description == nil {
			exp.Description = []string{}
		}
		if exp.Current {
			exp.EndDate = ""
		}
		d.Experience = append(d.Experience, exp)
		return nil
	})
	return exp, err
}

// UpdateExperience applies patch to the entry with id.
func (s *Store) UpdateExperience(ctx context.Context, id string, patch ExperiencePatch) (Experience, error) {
	var out Experience
	err := s.mutate(ctx, func(d *Data) error {
		idx := indexOfExperience(d.Experience, id)
		if idx < 0 {
			return NewError(KindNotFound, fmt.Sprintf("experience %q not found", id), nil)
		}
		exp := &d.Experience[idx]
		applyString(&exp.Company, patch.Company)
		applyString(&exp.Position, patch.Position)
		applyString(&exp.Location, patch.Location)
		applyString(&exp.StartDate, patch.StartDate)
		applyString(&exp.EndDate, patch.EndDate)
		if patch.Current != nil {
			exp.Current = *patch.Current
		}
		if exp.Current {
			exp.EndDate = ""
		}
		if patch.Description != nil {
			exp.Description = cloneStrings(*patch.Description)
		}
		out = *exp
		return nil
	})
	return out, err
}

// RemoveExperience deletes the entry with id.
func (s *Store) RemoveExperience(ctx context.Context, id string) error {
	return s.mutate(ctx, func(d *Data) error {
		idx := indexOfExperience(d.Experience, id)
		if idx < 0 {
			return NewError(KindNotFound, fmt.Sprintf("experience %q not found", id), nil)
		}
		d.Experience = append(d.Experience[:idx:idx], d.Experience[idx+1:]...)
		return nil
	})
}

// AddSkill appends a skill.
func (s *Store) AddSkill(ctx context.Context, skill Skill) (Skill, error) {
	normalized, err := normalizeSkill(skill)
	if err != nil {
		return Skill{}, err
	}
	err = s.mutate(ctx, func(d *Data) error {
		d.Skills = append(d.Skills, normalized)
		return nil
	})
	return normalized, err
}

// UpdateSkill replaces the skill at index.
func (s *Store) UpdateSkill(ctx context.Context, index int, skill Skill) (Skill, error) {
	normalized, err := normalizeSkill(skill)
	if err != nil {
		return Skill{}, err
	}
	err = s.mutate(ctx, func(d *Data) error {
		if index < 0 || index >= len(d.Skills) {
			return NewError(KindNotFound, fmt.Sprintf("skill index %d out of range", index), nil)
		}
		d.Skills[index] = normalized
		return nil
	})
	return normalized, err
}

// RemoveSkill deletes the skill at index.
func (s *Store) RemoveSkill(ctx context.Context, index int) error {
	return s.mutate(ctx, func(d *Data) error {
		if index < 0 || index >= len(d.Skills) {
			return NewError(KindNotFound, fmt.Sprintf("skill index %d out of range", index), nil)
		}
		d.Skills = append(d.Skills[:index:index], d.Skills[index+1:]...)
		return nil
	})
}

// SetTemplate selects the preview template.
func (s *Store) SetTemplate(ctx context.Context, template Template) error {
	if err := ValidateTemplate(template); err != nil {
		return err
	}
	return s.mutate(ctx, func(d *Data) error {
		d.Template = template
		return nil
	})
}

// SetTheme selects the color theme.
func (s *Store) SetTheme(ctx context.Context, theme Theme) error {
	if err := ValidateTheme(theme); err != nil {
		return err
	}
	return s.mutate(ctx, func(d *Data) error {
		d.Theme = theme
		return nil
	})
}

// SetFont selects the preview font.
func (s *Store) SetFont(ctx context.Context, font Font) error {
	if err := ValidateFont(font); err != nil {
		return err
	}
	return s.mutate(ctx, func(d *Data) error {
		d.Font = font
		return nil
	})
}

// Reset restores the default data.
func (s *Store) Reset(ctx context.Context) error {
	return s.mutate(ctx, func(d *Data) error {
		*d = DefaultData()
		return nil
	})
}

// Replace swaps the whole graph, used when hydrating from persisted slots.
func (s *Store) Replace(ctx context.Context, data Data) error {
	normalized, err := Normalize(data.Clone())
	if err != nil {
		return err
	}
	return s.mutate(ctx, func(d *Data) error {
		*d = normalized
		return nil
	})
}

func (s *Store) mutate(ctx context.Context, fn func(*Data) error) error {
	s.mu.Lock()
	next := s.data.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.data = next
	observers := make([]Observer, 0, len(s.observers))
	for i := 0; i < s.nextObs; i++ {
		if obs, ok := s.observers[i]; ok {
			observers = append(observers, obs)
		}
	}
	// notifyMu is taken before mu is released so observers see mutations in order.
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, obs := range observers {
		obs.OnChange(ctx, next.Clone())
	}
	return nil
}

func (s *Store) newID() string {
	if s.IDGenerator != nil {
		return s.IDGenerator()
	}
	return uuid.NewString()
}

func applyString(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}

func indexOfEducation(items []Education, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func indexOfExperience(items []Experience, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
