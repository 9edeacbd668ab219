package declari

import (
	"errors"
	"fmt"
	"strings"
)

// Lookup and resource errors. Like the structural errors of the node
// package they are always fatal for the compilation unit.
var (
	ErrSourceNotFound          = errors.New("template source not found")
	ErrSourceTooLarge          = errors.New("template source is too large")
	ErrUnknownStage            = errors.New("unknown processing stage")
	ErrUnknownExpressionEngine = errors.New("unknown expression engine")
	ErrUnknownNamespace        = errors.New("unknown namespace URI")
	ErrProcessorMismatch       = errors.New("instruction processor does not support this stage")
	ErrNoParser                = errors.New("no parser selected")
	ErrNoLinker                = errors.New("no linker selected")
	ErrLanguageSelected        = errors.New("another template language is already selected")
	ErrRequiredAttribute       = errors.New("required attribute is missing")
	ErrInvalidAttributeValue   = errors.New("invalid attribute value")
	ErrInvalidAttributeSpec    = errors.New("invalid attribute definition")
	ErrRelativePath            = errors.New("relative paths are not allowed")
	ErrUnknownStream           = errors.New("unknown template stream")
	ErrInvalidConfig           = errors.New("invalid configuration")
	ErrNoInheritanceHook       = errors.New("template inheritance requested but no inheritance hook is installed")
	ErrNoOutputTree            = errors.New("compilation produced no output tree")
	ErrDuplicateOutput         = errors.New("more than one template produced an output tree")
	ErrInvalidSnippet          = errors.New("snippet must be a container node")
	ErrCorruptArtifact         = errors.New("corrupt compiled artifact")
)

// RecursionError reports a macro or inheritance chain that refers
// back to itself.
type RecursionError struct {
	// Kind is what recursed, e.g. "macro" or "extend"
	Kind string
	// Chain lists the names in call order, ending with the name that
	// closed the cycle.
	Chain []string
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("infinite %s recursion detected: %s", e.Kind, strings.Join(e.Chain, " -> "))
}

// CompileError wraps any failure of a compilation unit with the name
// of the template being compiled and, where known, the offending node.
type CompileError struct {
	Template string
	Node     string
	Line     int
	Err      error
}

func (e *CompileError) Error() string {
	var sb strings.Builder
	sb.WriteString("failed to compile '")
	sb.WriteString(e.Template)
	sb.WriteByte('\'')
	if e.Node != "" {
		sb.WriteString(" at '")
		sb.WriteString(e.Node)
		sb.WriteByte('\'')
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, " (line %d)", e.Line)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	return sb.String()
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// NodeError attaches the offending node to an error raised by a stage
// or an instruction processor. The compiler copies this information
// into the CompileError it returns.
type NodeError struct {
	Name string
	Line int
	Err  error
}

func (e *NodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("'%s' (line %d): %s", e.Name, e.Line, e.Err)
	}
	return fmt.Sprintf("'%s': %s", e.Name, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

func wrapCompileError(template string, err error) error {
	if err == nil {
		return nil
	}
	var ce *CompileError
	if errors.As(err, &ce) {
		return err
	}
	out := &CompileError{Template: template, Err: err}
	var ne *NodeError
	if errors.As(err, &ne) {
		out.Node = ne.Name
		out.Line = ne.Line
	}
	return out
}
