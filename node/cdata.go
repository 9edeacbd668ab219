package node

import "fmt"

// Cdata is a leaf holding character data. Offsets are byte offsets.
type Cdata struct {
	treeNode
	data string
}

var _ Node = (*Cdata)(nil)

func NewCdata(data string) *Cdata {
	return &Cdata{data: data}
}

func (*Cdata) Type() NodeType {
	return CdataNodeType
}

func (c *Cdata) String() string {
	return c.data
}

func (c *Cdata) Length() int {
	return len(c.data)
}

func (c *Cdata) SetData(data string) {
	c.data = data
}

func (c *Cdata) AppendData(data string) {
	c.data += data
}

func (c *Cdata) checkOffset(off int) error {
	if off < 0 || off > len(c.data) {
		return fmt.Errorf("offset %d, length %d: %w", off, len(c.data), ErrOutOfRange)
	}
	return nil
}

// clip returns the end offset for a run of count bytes from off,
// bounded by the data length.
func (c *Cdata) clip(off, count int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("count %d: %w", count, ErrOutOfRange)
	}
	if count > len(c.data)-off {
		return len(c.data), nil
	}
	return off + count, nil
}

func (c *Cdata) InsertData(off int, data string) error {
	if err := c.checkOffset(off); err != nil {
		return err
	}
	c.data = c.data[:off] + data + c.data[off:]
	return nil
}

func (c *Cdata) DeleteData(off, count int) error {
	if err := c.checkOffset(off); err != nil {
		return err
	}
	end, err := c.clip(off, count)
	if err != nil {
		return err
	}
	c.data = c.data[:off] + c.data[end:]
	return nil
}

func (c *Cdata) ReplaceData(off, count int, data string) error {
	if err := c.checkOffset(off); err != nil {
		return err
	}
	end, err := c.clip(off, count)
	if err != nil {
		return err
	}
	c.data = c.data[:off] + data + c.data[end:]
	return nil
}

func (c *Cdata) SubstringData(off, count int) (string, error) {
	if err := c.checkOffset(off); err != nil {
		return "", err
	}
	end, err := c.clip(off, count)
	if err != nil {
		return "", err
	}
	return c.data[off:end], nil
}

func (c *Cdata) cloneShallow() Node {
	n := &Cdata{data: c.data}
	c.copyState(&n.treeNode)
	return n
}
