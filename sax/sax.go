package sax

import "context"

// SAX2 is a Handler built out of optional callbacks. Events without a
// registered callback are silently accepted.
type SAX2 struct {
	SetDocumentLocatorHandler    SetDocumentLocatorFunc
	StartDocumentHandler         StartDocumentFunc
	EndDocumentHandler           EndDocumentFunc
	XMLDeclHandler               XMLDeclFunc
	DocTypeHandler               DocTypeFunc
	ProcessingInstructionHandler ProcessingInstructionFunc
	StartElementHandler          StartElementFunc
	EndElementHandler            EndElementFunc
	CharactersHandler            CharactersFunc
	CDATABlockHandler            CDATABlockFunc
	CommentHandler               CommentFunc
}

var _ Handler = (*SAX2)(nil)

func New() *SAX2 {
	return &SAX2{}
}

func (s *SAX2) SetDocumentLocator(ctx context.Context, loc DocumentLocator) error {
	if h := s.SetDocumentLocatorHandler; h != nil {
		return h(ctx, loc)
	}
	return nil
}

func (s *SAX2) StartDocument(ctx context.Context) error {
	if h := s.StartDocumentHandler; h != nil {
		return h(ctx)
	}
	return nil
}

func (s *SAX2) EndDocument(ctx context.Context) error {
	if h := s.EndDocumentHandler; h != nil {
		return h(ctx)
	}
	return nil
}

func (s *SAX2) XMLDecl(ctx context.Context, version, encoding string, standalone bool) error {
	if h := s.XMLDeclHandler; h != nil {
		return h(ctx, version, encoding, standalone)
	}
	return nil
}

func (s *SAX2) DocType(ctx context.Context, raw string) error {
	if h := s.DocTypeHandler; h != nil {
		return h(ctx, raw)
	}
	return nil
}

func (s *SAX2) ProcessingInstruction(ctx context.Context, target, data string) error {
	if h := s.ProcessingInstructionHandler; h != nil {
		return h(ctx, target, data)
	}
	return nil
}

func (s *SAX2) StartElement(ctx context.Context, elem ParsedElement) error {
	if h := s.StartElementHandler; h != nil {
		return h(ctx, elem)
	}
	return nil
}

func (s *SAX2) EndElement(ctx context.Context, elem ParsedElement) error {
	if h := s.EndElementHandler; h != nil {
		return h(ctx, elem)
	}
	return nil
}

func (s *SAX2) Characters(ctx context.Context, data []byte) error {
	if h := s.CharactersHandler; h != nil {
		return h(ctx, data)
	}
	return nil
}

func (s *SAX2) CDATABlock(ctx context.Context, data []byte) error {
	if h := s.CDATABlockHandler; h != nil {
		return h(ctx, data)
	}
	return nil
}

func (s *SAX2) Comment(ctx context.Context, data []byte) error {
	if h := s.CommentHandler; h != nil {
		return h(ctx, data)
	}
	return nil
}
