package graph

import (
	"strconv"
	"strings"
)

// Print renders the schema as GraphQL SDL. Types are sorted by name; fields
// keep declaration order.
func Print(s *Schema) string {
	var w strings.Builder

	for _, name := range sortedKeys(s.scalars) {
		if IsBuiltinScalar(name) {
			continue
		}
		sc := s.scalars[name]
		printDescription(&w, "", sc.Description)
		w.WriteString("scalar " + name + "\n\n")
	}
	for _, name := range sortedKeys(s.enums) {
		e := s.enums[name]
		printDescription(&w, "", e.Description)
		w.WriteString("enum " + name + " {\n")
		for _, v := range e.values {
			printDescription(&w, "  ", v.Description)
			w.WriteString("  " + v.Name + "\n")
		}
		w.WriteString("}\n\n")
	}
	for _, name := range sortedKeys(s.inputs) {
		i := s.inputs[name]
		printDescription(&w, "", i.Description)
		w.WriteString("input " + name + " {\n")
		for _, f := range i.fields {
			printDescription(&w, "  ", f.Description)
			w.WriteString("  " + f.Name + ": " + f.Type.String() + defaultSuffix(f) + "\n")
		}
		w.WriteString("}\n\n")
	}
	if s.Query != nil {
		printObject(&w, s.Query)
	}
	for _, name := range sortedKeys(s.objects) {
		printObject(&w, s.objects[name])
	}
	return strings.TrimRight(w.String(), "\n") + "\n"
}

func printObject(w *strings.Builder, o *Object) {
	printDescription(w, "", o.Description)
	w.WriteString("type " + o.Name + " {\n")
	for _, f := range o.fields {
		printDescription(w, "  ", f.Description)
		w.WriteString("  " + f.Name)
		if len(f.Args) > 0 {
			args := make([]string, len(f.Args))
			for i, a := range f.Args {
				args[i] = a.Name + ": " + a.Type.String() + defaultSuffix(a)
			}
			w.WriteString("(" + strings.Join(args, ", ") + ")")
		}
		w.WriteString(": " + f.Type.String() + "\n")
	}
	w.WriteString("}\n\n")
}

func defaultSuffix(f *InputField) string {
	if f.Default == "" {
		return ""
	}
	return " = " + f.Default
}

func printDescription(w *strings.Builder, indent, d string) {
	if d == "" {
		return
	}
	if strings.Contains(d, "\n") {
		w.WriteString(indent + `"""` + "\n")
		for _, line := range strings.Split(d, "\n") {
			w.WriteString(indent + strings.ReplaceAll(line, `"""`, `\"""`) + "\n")
		}
		w.WriteString(indent + `"""` + "\n")
		return
	}
	w.WriteString(indent + strconv.Quote(d) + "\n")
}
