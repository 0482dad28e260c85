package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/covenant/pkg/pagination"
)

// Resolver returns the effective instructions and the fixed output
// specification for a stage.
type Resolver interface {
	Instructions(ctx context.Context, stage Stage) (string, error)
	Spec(ctx context.Context, stage Stage) (string, error)
}

// System defines the public contract for prompt domain operations.
type System interface {
	Resolver

	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Prompt], error)

	Find(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Create(ctx context.Context, cmd CreateCommand) (*Prompt, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Prompt, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Activate(ctx context.Context, id uuid.UUID) (*Prompt, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*Prompt, error)
}

type defaults struct{}

// Defaults returns a Resolver serving only the built-in instructions.
// It is used when no database is available.
func Defaults() Resolver {
	return defaults{}
}

func (defaults) Instructions(_ context.Context, stage Stage) (string, error) {
	return Instructions(stage)
}

func (defaults) Spec(_ context.Context, stage Stage) (string, error) {
	return Spec(stage)
}

// Compose joins the effective instructions and spec for a stage, followed
// by any trailing sections separated by blank lines.
func Compose(ctx context.Context, r Resolver, stage Stage, sections ...string) (string, error) {
	inst, err := r.Instructions(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	spec, err := r.Spec(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load spec for %s: %w", stage, err)
	}

	var sb strings.Builder
	sb.WriteString(inst)
	sb.WriteString("\n\n")
	sb.WriteString(spec)

	for _, s := range sections {
		sb.WriteString("\n\n")
		sb.WriteString(s)
	}

	return sb.String(), nil
}
