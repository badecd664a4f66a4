package domain

// PageContent is the cleaned, length-bounded visible text of a web page.
type PageContent struct {
	URL  string
	Text string
}

// Image is an uploaded picture forwarded to the model inline.
type Image struct {
	Data      []byte
	MediaType string
}

// Reply is the model answer together with the branch that produced it.
type Reply struct {
	Text  string
	Image bool
}
