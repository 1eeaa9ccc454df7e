// Package graph exposes the task core as a GraphQL schema.
package graph

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/kanban-task-service/domain/task"
	"github.com/example/kanban-task-service/modules/task"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

var statusEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "TaskStatus",
	Values: graphql.EnumValueConfigMap{
		string(domain.StatusToDo):       &graphql.EnumValueConfig{Value: string(domain.StatusToDo)},
		string(domain.StatusInProgress): &graphql.EnumValueConfig{Value: string(domain.StatusInProgress)},
		string(domain.StatusDone):       &graphql.EnumValueConfig{Value: string(domain.StatusDone)},
	},
})

var priorityEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "TaskPriority",
	Values: graphql.EnumValueConfigMap{
		string(domain.PriorityLow):  &graphql.EnumValueConfig{Value: string(domain.PriorityLow)},
		string(domain.PriorityMed):  &graphql.EnumValueConfig{Value: string(domain.PriorityMed)},
		string(domain.PriorityHigh): &graphql.EnumValueConfig{Value: string(domain.PriorityHigh)},
	},
})

var taskType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Task",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"title":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.String},
		"status":      &graphql.Field{Type: graphql.NewNonNull(statusEnum)},
		"priority":    &graphql.Field{Type: graphql.NewNonNull(priorityEnum)},
		"version":     &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"createdAt":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"updatedAt":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var pageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "TaskPage",
	Fields: graphql.Fields{
		"content":          &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(taskType)))},
		"totalElements":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalPages":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"number":           &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"size":             &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"numberOfElements": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"first":            &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"last":             &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
	},
})

func inputType(name string, titleRequired bool) *graphql.InputObject {
	title := graphql.Input(graphql.String)
	if titleRequired {
		title = graphql.NewNonNull(graphql.String)
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name: name,
		Fields: graphql.InputObjectConfigFieldMap{
			"title":       &graphql.InputObjectFieldConfig{Type: title},
			"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"status":      &graphql.InputObjectFieldConfig{Type: statusEnum},
			"priority":    &graphql.InputObjectFieldConfig{Type: priorityEnum},
		},
	})
}

var (
	taskInputType        = inputType("TaskInput", true)
	taskPartialInputType = inputType("TaskPartialInput", false)
)

// Schema executes GraphQL requests against a TaskPort.
type Schema struct {
	schema graphql.Schema
	port   task.TaskPort
}

// NewSchema builds the task schema on top of port.
func NewSchema(port task.TaskPort) (*Schema, error) {
	s := &Schema{port: port}

	idArg := &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"tasks": &graphql.Field{
				Type: graphql.NewNonNull(pageType),
				Args: graphql.FieldConfigArgument{
					"status": &graphql.ArgumentConfig{Type: statusEnum},
					"page":   &graphql.ArgumentConfig{Type: graphql.Int},
					"size":   &graphql.ArgumentConfig{Type: graphql.Int},
					"sort":   &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
				},
				Resolve: s.resolveTasks,
			},
			"task": &graphql.Field{
				Type:    taskType,
				Args:    graphql.FieldConfigArgument{"id": idArg},
				Resolve: s.resolveTask,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createTask": &graphql.Field{
				Type: graphql.NewNonNull(taskType),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(taskInputType)},
				},
				Resolve: s.resolveCreate,
			},
			"updateTask": &graphql.Field{
				Type: graphql.NewNonNull(taskType),
				Args: graphql.FieldConfigArgument{
					"id":    idArg,
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(taskInputType)},
				},
				Resolve: s.resolveUpdate,
			},
			"partialUpdateTask": &graphql.Field{
				Type: graphql.NewNonNull(taskType),
				Args: graphql.FieldConfigArgument{
					"id":    idArg,
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(taskPartialInputType)},
				},
				Resolve: s.resolvePartialUpdate,
			},
			"deleteTask": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.Boolean),
				Args:    graphql.FieldConfigArgument{"id": idArg},
				Resolve: s.resolveDelete,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
	if err != nil {
		return nil, fmt.Errorf("failed to build graphql schema: %w", err)
	}
	s.schema = schema
	return s, nil
}

// Request is a GraphQL request body.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Execute runs req.
func (s *Schema) Execute(ctx context.Context, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        context.WithValue(ctx, rawVariablesKey{}, req.Variables),
	})
}

func (s *Schema) resolveTasks(p graphql.ResolveParams) (any, error) {
	q := task.ListQuery{}
	if v, ok := p.Args["status"].(string); ok {
		q.Status = domain.Status(v)
	}
	if v, ok := p.Args["page"].(int); ok {
		q.Page = v
	}
	if v, ok := p.Args["size"].(int); ok {
		q.Size = v
	}
	if raw, ok := p.Args["sort"].([]any); ok {
		sort := make([]string, 0, len(raw))
		for _, v := range raw {
			if str, ok := v.(string); ok {
				sort = append(sort, str)
			}
		}
		q.Sort = domain.ParseSort(sort)
	}

	page, err := s.port.ListTasks(p.Context, q)
	if err != nil {
		return nil, toGraphError(err)
	}
	return pageToMap(page), nil
}

func (s *Schema) resolveTask(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(string)
	t, err := s.port.GetTask(p.Context, id)
	if err != nil {
		return nil, toGraphError(err)
	}
	return taskToMap(t), nil
}

func (s *Schema) resolveCreate(p graphql.ResolveParams) (any, error) {
	t, err := s.port.CreateTask(p.Context, s.input(p))
	if err != nil {
		return nil, toGraphError(err)
	}
	return taskToMap(t), nil
}

func (s *Schema) resolveUpdate(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(string)
	t, err := s.port.UpdateTask(p.Context, id, s.input(p))
	if err != nil {
		return nil, toGraphError(err)
	}
	return taskToMap(t), nil
}

func (s *Schema) resolvePartialUpdate(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(string)
	t, err := s.port.PartialUpdateTask(p.Context, id, s.input(p))
	if err != nil {
		return nil, toGraphError(err)
	}
	return taskToMap(t), nil
}

func (s *Schema) resolveDelete(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(string)
	if err := s.port.DeleteTask(p.Context, id); err != nil {
		return nil, toGraphError(err)
	}
	return true, nil
}

// inputFromArgs reads the "input" argument. A key missing from the map is
// absent; a key in nulls was sent as an explicit null.
func inputFromArgs(args map[string]any, nulls map[string]bool) domain.Input {
	raw, _ := args["input"].(map[string]any)
	field := func(name string) (any, bool) {
		if v, ok := raw[name]; ok {
			return v, true
		}
		if nulls[name] {
			return nil, true
		}
		return nil, false
	}

	var in domain.Input
	if v, ok := field("title"); ok {
		in.Title = stringField[string](v)
	}
	if v, ok := field("description"); ok {
		in.Description = stringField[string](v)
	}
	if v, ok := field("status"); ok {
		in.Status = stringField[domain.Status](v)
	}
	if v, ok := field("priority"); ok {
		in.Priority = stringField[domain.Priority](v)
	}
	return in
}

type rawVariablesKey struct{}

// explicitNulls lists the fields of the named object argument that the
// request set to null. graphql-go coerces variables before resolving and
// drops null fields from input objects, so they are recovered from the
// variables as sent and from the argument's syntax tree.
func explicitNulls(p graphql.ResolveParams, arg string) map[string]bool {
	if len(p.Info.FieldASTs) == 0 || p.Context == nil {
		return nil
	}
	vars, _ := p.Context.Value(rawVariablesKey{}).(map[string]any)

	nulls := make(map[string]bool)
	for _, a := range p.Info.FieldASTs[0].Arguments {
		if a.Name == nil || a.Name.Value != arg {
			continue
		}
		switch v := a.Value.(type) {
		case *ast.Variable:
			obj, _ := vars[v.Name.Value].(map[string]any)
			for name, value := range obj {
				if value == nil {
					nulls[name] = true
				}
			}
		case *ast.ObjectValue:
			for _, f := range v.Fields {
				ref, ok := f.Value.(*ast.Variable)
				if !ok {
					continue
				}
				if value, present := vars[ref.Name.Value]; present && value == nil {
					nulls[f.Name.Value] = true
				}
			}
		}
	}
	return nulls
}

func (s *Schema) input(p graphql.ResolveParams) domain.Input {
	return inputFromArgs(p.Args, explicitNulls(p, "input"))
}

func stringField[T ~string](v any) domain.Field[T] {
	if v == nil {
		return domain.Null[T]()
	}
	s, _ := v.(string)
	return domain.Set(T(s))
}

func taskToMap(t *domain.Task) map[string]any {
	return map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"status":      string(t.Status),
		"priority":    string(t.Priority),
		"version":     int(t.Version),
		"createdAt":   t.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updatedAt":   t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func pageToMap(p *domain.Page) map[string]any {
	content := make([]any, 0, len(p.Content))
	for i := range p.Content {
		content = append(content, taskToMap(&p.Content[i]))
	}
	return map[string]any{
		"content":          content,
		"totalElements":    int(p.TotalElements),
		"totalPages":       p.TotalPages,
		"number":           p.Number,
		"size":             p.Size,
		"numberOfElements": p.NumberOfElements,
		"first":            p.First,
		"last":             p.Last,
	}
}
