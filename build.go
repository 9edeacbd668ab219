package declari

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/lestrrat-go/declari/node"
	"github.com/lestrrat-go/pdebug/v3"
)

type pendingTemplate struct {
	name string
	// include templates are handed to the inheritance hook, never linked
	include bool
	// chain is the path of extend/load requests that led here,
	// including name itself
	chain []string
}

type waitingTree struct {
	pendingTemplate
	doc     *node.Document
	extend  string
	waitsOn []string
}

// unitBuilder runs the parse/stage/inheritance loop of one compilation.
//
// Templates are taken from a FIFO queue. A template that loads other
// templates is parked on the restore stack until its includes went
// through the pipeline. The loop alternates between the queue and the
// stack until both are empty, as finishing a parked tree may request
// more templates. The topmost parked tree whose includes are all done
// is restored first.
type unitBuilder struct {
	compiler  *Compiler
	main      string
	current   string
	queue     []pendingTemplate
	restore   []waitingTree
	scheduled map[string]struct{}
	done      map[string]struct{}
	owned     []*node.Document
	final     *node.Document
}

func newUnitBuilder(c *Compiler, main string) *unitBuilder {
	return &unitBuilder{
		compiler:  c,
		main:      main,
		current:   main,
		queue:     []pendingTemplate{{name: main, chain: []string{main}}},
		scheduled: map[string]struct{}{main: {}},
		done:      make(map[string]struct{}),
	}
}

func (b *unitBuilder) run(ctx context.Context) (*node.Document, error) {
	tlog := getTraceLogFromContext(ctx)
	for len(b.queue) > 0 || len(b.restore) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if len(b.queue) > 0 {
			item := b.queue[0]
			b.queue[0] = pendingTemplate{}
			b.queue = b.queue[1:]
			if err := b.load(ctx, item); err != nil {
				return nil, err
			}
			continue
		}

		idx, err := b.ready()
		if err != nil {
			return nil, err
		}
		top := b.restore[idx]
		b.restore = slices.Delete(b.restore, idx, idx+1)
		b.current = top.name
		tlog.Debug("restoring template", slog.String("template", top.name), slog.Int("stack", len(b.restore)))
		if err := b.finish(ctx, top.pendingTemplate, top.doc, top.extend); err != nil {
			return nil, err
		}
	}

	if b.final == nil {
		return nil, fmt.Errorf("template '%s': %w", b.main, ErrNoOutputTree)
	}
	return b.final, nil
}

func (b *unitBuilder) load(ctx context.Context, item pendingTemplate) error {
	if pdebug.Enabled {
		pdebug.Printf("loading '%s' (include=%t)", item.name, item.include)
	}
	b.current = item.name
	if item.name != b.main {
		b.compiler.unit.AddDependency(item.name)
	}

	doc, err := b.compiler.loadTemplate(ctx, item.name)
	if err != nil {
		return err
	}
	b.own(doc)
	getTraceLogFromContext(ctx).Debug("parsed template", slog.String("template", item.name))

	var extend string
	var includes []string
	if hook := b.compiler.hook; hook != nil {
		extend, includes, err = hook.CheckInheritance(doc)
		if err != nil {
			return err
		}
	}

	var waitsOn []string
	for _, inc := range includes {
		if slices.Contains(item.chain, inc) {
			return &RecursionError{Kind: "load", Chain: append(slices.Clone(item.chain), inc)}
		}
		if _, ok := b.done[inc]; ok {
			continue
		}
		waitsOn = append(waitsOn, inc)
		if _, ok := b.scheduled[inc]; ok {
			continue
		}
		b.scheduled[inc] = struct{}{}
		b.queue = append(b.queue, pendingTemplate{
			name:    inc,
			include: true,
			chain:   append(slices.Clone(item.chain), inc),
		})
	}
	if len(waitsOn) > 0 {
		b.restore = append(b.restore, waitingTree{pendingTemplate: item, doc: doc, extend: extend, waitsOn: waitsOn})
		return nil
	}
	return b.finish(ctx, item, doc, extend)
}

// ready returns the index of the topmost parked tree that can be
// finished. If none can, the parked trees wait on each other.
func (b *unitBuilder) ready() (int, error) {
	for i := len(b.restore) - 1; i >= 0; i-- {
		if b.isReady(b.restore[i]) {
			return i, nil
		}
	}
	top := b.restore[len(b.restore)-1]
	chain := slices.Clone(top.chain)
	for _, name := range top.waitsOn {
		if _, ok := b.done[name]; !ok {
			chain = append(chain, name)
			break
		}
	}
	return -1, &RecursionError{Kind: "load", Chain: chain}
}

func (b *unitBuilder) isReady(w waitingTree) bool {
	for _, name := range w.waitsOn {
		if _, ok := b.done[name]; !ok {
			return false
		}
	}
	return true
}

// finish runs the stages over a tree whose includes are all available
// and decides what happens to it next.
func (b *unitBuilder) finish(ctx context.Context, item pendingTemplate, doc *node.Document, extend string) error {
	doc, err := b.runStages(ctx, doc)
	if err != nil {
		return err
	}

	b.done[item.name] = struct{}{}
	switch {
	case item.include:
		return b.handOver(item.name, doc)
	case extend != "":
		if slices.Contains(item.chain, extend) {
			return &RecursionError{Kind: "extend", Chain: append(slices.Clone(item.chain), extend)}
		}
		if err := b.handOver(item.name, doc); err != nil {
			return err
		}
		b.scheduled[extend] = struct{}{}
		b.queue = append(b.queue, pendingTemplate{
			name:  extend,
			chain: append(slices.Clone(item.chain), extend),
		})
		return nil
	default:
		if b.final != nil {
			return fmt.Errorf("template '%s' would replace the output tree of '%s': %w", item.name, b.main, ErrDuplicateOutput)
		}
		final, err := b.promoteSnippet(doc)
		if err != nil {
			return err
		}
		b.final = final
		return nil
	}
}

// promoteSnippet replaces the output tree with the content of the
// snippet the tree asked for, if any. The snippet content goes into a
// plain document of the same type, which may hold several top level
// elements.
func (b *unitBuilder) promoteSnippet(doc *node.Document) (*node.Document, error) {
	if !doc.HasExtra(node.ExtraSnippet) {
		return doc, nil
	}
	snippet, err := node.ExtraAs[node.Container](doc, node.ExtraSnippet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnippet, err)
	}
	if pdebug.Enabled {
		pdebug.Printf("promoting snippet '%s' to the output tree", node.Name(snippet))
	}

	out := node.NewDocument(doc.DocumentType())
	if err := snippet.MoveChildren(out); err != nil {
		return nil, err
	}
	b.disown(doc)
	node.Dispose(doc)
	b.own(out)
	return out, nil
}

func (b *unitBuilder) runStages(ctx context.Context, doc *node.Document) (*node.Document, error) {
	for _, s := range b.compiler.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := s.Process(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("stage '%s': %w", s.Name(), err)
		}
		if out != doc {
			b.disown(doc)
			b.own(out)
			doc = out
		}
	}
	return doc, nil
}

// handOver gives a processed tree to the inheritance hook, which owns
// it from now on.
func (b *unitBuilder) handOver(name string, doc *node.Document) error {
	hook := b.compiler.hook
	if hook == nil {
		return fmt.Errorf("template '%s': %w", name, ErrNoInheritanceHook)
	}
	b.disown(doc)
	return hook.HandleInheritance(name, doc)
}

func (b *unitBuilder) own(doc *node.Document) {
	b.owned = append(b.owned, doc)
}

func (b *unitBuilder) disown(doc *node.Document) {
	if i := slices.Index(b.owned, doc); i >= 0 {
		b.owned = slices.Delete(b.owned, i, i+1)
	}
}

func (b *unitBuilder) dispose() {
	for _, doc := range b.owned {
		node.Dispose(doc)
	}
	b.owned = nil
	b.final = nil
	b.restore = nil
	b.queue = nil
}
