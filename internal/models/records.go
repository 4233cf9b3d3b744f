package models

// SplitUnit is one page-bounded sub-document written to the temporary
// folder by the splitter. Page numbers are 1-based and inclusive.
// The file is owned by the pipeline run that created it and is removed
// when the run finishes.
type SplitUnit struct {
	Path      string
	StartPage int
	EndPage   int
}

// MarkdownPart is the converted markdown for one split unit. Splits that
// fail conversion produce no MarkdownPart; their page range is simply
// absent from the final output.
type MarkdownPart struct {
	Markdown  string
	StartPage int
	EndPage   int
}

// PageRecord is one page of the final, image-free markdown output.
// Page numbers are 1-based and ascending but not necessarily contiguous:
// pages whose content is empty after trimming are dropped.
type PageRecord struct {
	PageNumber int    `json:"page_number"`
	Markdown   string `json:"markdown"`
}

// ImageRecord describes one embedded base64 image found in the reassembled
// markdown. IDs are 1-based in order of appearance. Payload is the raw
// base64 string copied out of the markdown at extraction time; it must stay
// byte-identical so the substitution pass can find the block again.
// Description is set exactly once by the description engine.
type ImageRecord struct {
	ID          int
	AltText     string
	Format      string
	Payload     string
	ByteSize    int
	Description string
}

// ContextWindow is the text surrounding one image, used to enrich its
// description prompt. It is not persisted beyond the request that uses it.
type ContextWindow struct {
	Before   string
	After    string
	Combined string
}
