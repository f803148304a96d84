package session

import (
	"context"
	"strings"

	"github.com/citegraph/gref/internal/graph"
	"github.com/citegraph/gref/internal/storage"
)

func (c *Controller) create(ctx context.Context, args []string) error {
	name := args[0]
	corpus, err := c.store.Create(name)
	if err != nil {
		return err
	}
	c.activate(name, corpus)
	c.out.Println("Created %s", name)
	return nil
}

func (c *Controller) load(ctx context.Context, args []string) error {
	name := args[0]
	corpus, err := c.store.Load(name)
	if err != nil {
		return err
	}
	c.activate(name, corpus)
	c.out.Println("Loaded %s (%d documents)", name, len(corpus))
	return nil
}

func (c *Controller) list(ctx context.Context, args []string) error {
	names, err := c.store.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		c.out.Warn("No corpora found in %s", c.store.Root())
		return nil
	}
	c.out.Println("%s", strings.Join(append([]string{"Corpora found:"}, names...), "\n  - "))
	return nil
}

func (c *Controller) remove(ctx context.Context, args []string) error {
	name := args[0]
	var kinds []storage.Kind
	for _, arg := range args[1:] {
		k, err := storage.ParseKind(arg)
		if err != nil {
			return usageError("%v", err)
		}
		kinds = append(kinds, k)
	}

	removed, err := c.store.Remove(name, kinds...)
	for _, path := range removed {
		c.out.Println("Removed %s", path)
	}
	return err
}

func (c *Controller) unload(ctx context.Context, args []string) error {
	c.out.Println("Unloaded %s", c.name)
	c.reset()
	return nil
}

func (c *Controller) peek(ctx context.Context, args []string) error {
	c.out.Println("%s: %d documents", c.name, len(c.corpus))
	if len(c.corpus) > 0 {
		c.out.Muted("%s", graph.Wrap(strings.Join(c.corpus.IDs(), " "), 76))
	}
	return nil
}
