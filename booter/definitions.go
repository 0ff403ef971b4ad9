package booter

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

type Definition struct {
	Id       string
	Priority int
	Disabled bool
	Config   cty.Value
}

var NilConfig = cty.NilVal

func LoadDefinitionFiles(files []string) ([]*Definition, error) {
	hclFiles := make([]*hcl.File, 0)
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		hclFile, hclDiag := hclsyntax.ParseConfig(content, file, hcl.Pos{Line: 1})
		if hclDiag.HasErrors() {
			return nil, errors.New(hclDiag.Error())
		}
		hclFiles = append(hclFiles, hclFile)
	}
	return parseDefinitions(hcl.MergeFiles(hclFiles))
}

func LoadDefinitions(content []byte) ([]*Definition, error) {
	hclFile, hclDiag := hclsyntax.ParseConfig(content, "config.hcl", hcl.Pos{Line: 1})
	if hclDiag.HasErrors() {
		return nil, errors.New(hclDiag.Error())
	}
	return parseDefinitions(hclFile.Body)
}

// parseDefinitions reads `define` blocks into eval-context variables, then
// `module "<id>"` blocks into Definitions ordered by priority.
func parseDefinitions(body hcl.Body) ([]*Definition, error) {
	evalCtx := &hcl.EvalContext{
		Functions: DefaultFunctions,
		Variables: make(map[string]cty.Value),
	}

	rootSchema := &hcl.BodySchema{
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "module", LabelNames: []string{"id"}},
			{Type: "define", LabelNames: []string{"id"}},
		},
	}
	content, diag := body.Content(rootSchema)
	if diag.HasErrors() {
		return nil, errors.New(diag.Error())
	}

	modules := make([]*hcl.Block, 0)
	for _, block := range content.Blocks {
		if block.Type == "define" {
			id := block.Labels[0]
			sb := block.Body.(*hclsyntax.Body)
			for _, attr := range sb.Attributes {
				value, diag := attr.Expr.Value(evalCtx)
				if diag.HasErrors() {
					return nil, errors.New(diag.Error())
				}
				evalCtx.Variables[fmt.Sprintf("%s_%s", id, attr.Name)] = value
			}
		} else {
			modules = append(modules, block)
		}
	}

	moduleSchema := &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{
			{Name: "priority"},
			{Name: "disabled"},
		},
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "config"},
		},
	}

	priorityBase := 1000
	result := make([]*Definition, 0, len(modules))
	for i, m := range modules {
		def := &Definition{
			Id:       m.Labels[0],
			Priority: priorityBase + i,
			Config:   NilConfig,
		}
		content, diag := m.Body.Content(moduleSchema)
		if diag.HasErrors() {
			return nil, errors.New(diag.Error())
		}
		for _, attr := range content.Attributes {
			value, diag := attr.Expr.Value(evalCtx)
			if diag.HasErrors() {
				return nil, errors.New(diag.Error())
			}
			switch attr.Name {
			case "priority":
				p, _ := value.AsBigFloat().Int64()
				def.Priority = int(p)
			case "disabled":
				def.Disabled = value.True()
			}
		}
		for _, c := range content.Blocks {
			obj, err := objectValFromBody(c.Body.(*hclsyntax.Body), evalCtx)
			if err != nil {
				return nil, err
			}
			def.Config = obj
		}
		result = append(result, def)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority < result[j].Priority
	})
	return result, nil
}

func objectValFromBody(body *hclsyntax.Body, evalCtx *hcl.EvalContext) (cty.Value, error) {
	rt := make(map[string]cty.Value)
	for _, attr := range body.Attributes {
		value, diag := attr.Expr.Value(evalCtx)
		if diag.HasErrors() {
			return cty.NilVal, errors.New(diag.Error())
		}
		rt[attr.Name] = value
	}
	for _, block := range body.Blocks {
		bval, err := objectValFromBody(block.Body, evalCtx)
		if err != nil {
			return cty.NilVal, err
		}
		rt[block.Type] = bval
	}
	return cty.ObjectVal(rt), nil
}

func EvalObject(objName string, obj any, value cty.Value) error {
	return evalReflectValue(objName, reflect.ValueOf(obj), value)
}

func evalReflectValue(refName string, ref reflect.Value, value cty.Value) error {
	if ref.Kind() == reflect.Pointer {
		ref = reflect.Indirect(ref)
	}
	switch ref.Kind() {
	case reflect.Struct:
		if !value.Type().IsObjectType() {
			return fmt.Errorf("%s should be object as %s", refName, ref.Type().Name())
		}
		for k, v := range value.AsValueMap() {
			field := ref.FieldByName(k)
			if !field.IsValid() {
				return fmt.Errorf("%s field not found in %s", k, refName)
			}
			if err := evalReflectValue(fmt.Sprintf("%s.%s", refName, k), field, v); err != nil {
				return err
			}
		}
	case reflect.String:
		if value.Type() != cty.String {
			return fmt.Errorf("%s should be string", refName)
		}
		ref.SetString(value.AsString())
	case reflect.Bool:
		if value.Type() != cty.Bool {
			return fmt.Errorf("%s should be bool", refName)
		}
		ref.SetBool(value.True())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := int64FromCty(value)
		if err != nil {
			return fmt.Errorf("%s %s", refName, err.Error())
		}
		ref.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := int64FromCty(value)
		if err != nil {
			return fmt.Errorf("%s %s", refName, err.Error())
		}
		ref.SetUint(uint64(v))
	case reflect.Float32, reflect.Float64:
		if value.Type() != cty.Number {
			return fmt.Errorf("%s should be number", refName)
		}
		f, _ := value.AsBigFloat().Float64()
		ref.SetFloat(f)
	case reflect.Slice:
		vs := value.AsValueSlice()
		slice := reflect.MakeSlice(ref.Type(), len(vs), len(vs))
		for i, elm := range vs {
			if err := evalReflectValue(fmt.Sprintf("%s[%d]", refName, i), slice.Index(i), elm); err != nil {
				return err
			}
		}
		ref.Set(slice)
	default:
		return fmt.Errorf("unsupported %s type: %s", refName, ref.Kind())
	}
	return nil
}

// int64FromCty accepts plain numbers and duration strings ("100ms", "15s",
// "1m", "2h") so that time.Duration fields can be configured readably.
func int64FromCty(value cty.Value) (int64, error) {
	switch value.Type() {
	case cty.Number:
		l, _ := value.AsBigFloat().Int64()
		return l, nil
	case cty.String:
		s := value.AsString()
		if d, err := time.ParseDuration(s); err == nil {
			return int64(d), nil
		}
		if l, err := strconv.ParseInt(s, 10, 64); err == nil {
			return l, nil
		}
		return 0, fmt.Errorf("is not number-compatible: %q", s)
	default:
		return 0, fmt.Errorf("should be number, not %s", strings.ToLower(value.Type().FriendlyName()))
	}
}
