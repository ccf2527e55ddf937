// Package catalog loads the declarative stage pipelines of every branch and
// selects the pipeline for a session.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"reflect"
	"slices"

	"gopkg.in/yaml.v3"

	"kycportal/internal/onboarding/models"
)

//go:embed stages.yaml
var defaultStages []byte

type fieldDoc struct {
	Section    string `yaml:"section"`
	Name       string `yaml:"name"`
	Label      string `yaml:"label"`
	Required   bool   `yaml:"required"`
	MinLength  int    `yaml:"minLength"`
	MustAccept bool   `yaml:"mustAccept"`
	Numeric    bool   `yaml:"numeric"`
	Email      bool   `yaml:"email"`
}

type fileDoc struct {
	Slot     string `yaml:"slot"`
	Label    string `yaml:"label"`
	Required bool   `yaml:"required"`
}

type stageDoc struct {
	Name   string     `yaml:"name"`
	Title  string     `yaml:"title"`
	Fields []fieldDoc `yaml:"fields"`
	Files  []fileDoc  `yaml:"files"`
}

type document struct {
	Stages   map[string]stageDoc   `yaml:"stages"`
	Flows    map[string][]string   `yaml:"flows"`
	Branches map[string][]stageDoc `yaml:"branches"`
}

// Catalog holds the validated pipelines. It is immutable after Load.
type Catalog struct {
	flows     map[models.Flow][]models.Branch
	pipelines map[models.Branch][]models.Stage
}

// Default loads the embedded catalogue.
func Default() (*Catalog, error) {
	return Load(defaultStages)
}

// MustDefault is Default for process start-up; the embedded document is
// covered by tests.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load parses and validates a catalogue document.
func Load(data []byte) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode stage catalogue: %w", err)
	}

	c := &Catalog{
		flows:     make(map[models.Flow][]models.Branch, len(doc.Flows)),
		pipelines: make(map[models.Branch][]models.Stage, len(doc.Branches)),
	}

	for name, docs := range doc.Branches {
		branch := models.Branch(name)
		if !branch.IsValid() {
			return nil, fmt.Errorf("stage catalogue: unknown branch %q", name)
		}
		stages, err := buildPipeline(branch, docs)
		if err != nil {
			return nil, err
		}
		c.pipelines[branch] = stages
	}

	for name, branches := range doc.Flows {
		flow, err := models.ParseFlow(name)
		if err != nil {
			return nil, fmt.Errorf("stage catalogue: %w", err)
		}
		for _, b := range branches {
			branch := models.Branch(b)
			if _, ok := c.pipelines[branch]; !ok {
				return nil, fmt.Errorf("stage catalogue: flow %q offers branch %q without a pipeline", name, b)
			}
			c.flows[flow] = append(c.flows[flow], branch)
		}
	}

	for _, b := range models.AllBranches {
		if _, ok := c.pipelines[b]; !ok {
			return nil, fmt.Errorf("stage catalogue: branch %q has no pipeline", b)
		}
	}
	return c, nil
}

func buildPipeline(branch models.Branch, docs []stageDoc) ([]models.Stage, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("stage catalogue: branch %q has no stages", branch)
	}
	allowed := models.SectionsFor(branch)
	seen := make(map[string]bool, len(docs))
	stages := make([]models.Stage, 0, len(docs))

	for _, sd := range docs {
		if sd.Name == "" {
			return nil, fmt.Errorf("stage catalogue: branch %q has an unnamed stage", branch)
		}
		if seen[sd.Name] {
			return nil, fmt.Errorf("stage catalogue: branch %q repeats stage %q", branch, sd.Name)
		}
		seen[sd.Name] = true

		stage := models.Stage{Name: sd.Name, Title: sd.Title}
		for _, fd := range sd.Fields {
			section := models.Section(fd.Section)
			if !slices.Contains(allowed, section) {
				return nil, fmt.Errorf("stage catalogue: %s/%s uses section %q outside branch %q", branch, sd.Name, fd.Section, branch)
			}
			if !models.HasField(section, fd.Name) {
				return nil, fmt.Errorf("stage catalogue: %s/%s references unknown field %s.%s", branch, sd.Name, fd.Section, fd.Name)
			}
			kind := models.FieldKind(section, fd.Name)
			if fd.MustAccept != (kind == reflect.Bool) {
				return nil, fmt.Errorf("stage catalogue: %s/%s field %s must be a checkbox iff mustAccept", branch, sd.Name, fd.Name)
			}
			stage.Fields = append(stage.Fields, models.FieldRule{
				Section:    section,
				Name:       fd.Name,
				Label:      fd.Label,
				Required:   fd.Required,
				MinLength:  fd.MinLength,
				MustAccept: fd.MustAccept,
				Numeric:    fd.Numeric,
				Email:      fd.Email,
			})
		}
		for _, fl := range sd.Files {
			slot := models.Slot(fl.Slot)
			if !slot.IsValid() {
				return nil, fmt.Errorf("stage catalogue: %s/%s uses unknown slot %q", branch, sd.Name, fl.Slot)
			}
			stage.Files = append(stage.Files, models.FileRule{Slot: slot, Label: fl.Label, Required: fl.Required})
		}
		stages = append(stages, stage)
	}
	return stages, nil
}

// Offer returns the branches a flow offers, in catalogue order.
func (c *Catalog) Offer(flow models.Flow) []models.Branch {
	return slices.Clone(c.flows[flow])
}

// Pipeline returns the ordered stages of a branch.
func (c *Catalog) Pipeline(b models.Branch) ([]models.Stage, bool) {
	stages, ok := c.pipelines[b]
	if !ok {
		return nil, false
	}
	return slices.Clone(stages), true
}

// Slots returns every attachment slot used by the branch pipeline.
func (c *Catalog) Slots(b models.Branch) []models.Slot {
	var out []models.Slot
	for _, st := range c.pipelines[b] {
		for _, slot := range st.Slots() {
			if !slices.Contains(out, slot) {
				out = append(out, slot)
			}
		}
	}
	return out
}
