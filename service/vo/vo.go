package vo

type ChildLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	ID    string `json:"id"`
}

// NavigationEntry is a main menu entry. Entries that collapsed onto their
// only child carry the child's url and no children.
type NavigationEntry struct {
	Title    string      `json:"title"`
	URL      string      `json:"url"`
	ID       string      `json:"id,omitempty"`
	Children []ChildLink `json:"children"`
}

type NewsEntry struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Created     string `json:"created"` // DD.MM.YYYY
}

type ProjectReference struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

type Testimonial struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Author   string `json:"author,omitempty"`
	Text     string `json:"text"`     // sanitized html
	Markdown string `json:"markdown"` // Text for non html consumers
}

type Crumb struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

type Layout struct {
	PortalType    string `json:"portalType"`
	FullWidth     bool   `json:"fullWidth"`
	ShowLeftSlot  bool   `json:"showLeftSlot"`
	ShowRightSlot bool   `json:"showRightSlot"`
	ContentSpan   int    `json:"contentSpan"`
	LeftSlotSpan  int    `json:"leftSlotSpan"`
	RightSlotSpan int    `json:"rightSlotSpan"`
}

// Page bundles the view data of one content path for templates
type Page struct {
	ID                string               `json:"id"`
	Title             string               `json:"title"`
	Description       string               `json:"description,omitempty"`
	URL               string               `json:"url"`
	NavRoot           Crumb                `json:"navRoot"`
	Navigation        []NavigationEntry    `json:"navigation"`
	News              []NewsEntry          `json:"news"`
	ProjectReferences [][]ProjectReference `json:"projectReferences"`
	Testimonial       *Testimonial         `json:"testimonial,omitempty"`
	Breadcrumbs       []Crumb              `json:"breadcrumbs"`
	Layout            Layout               `json:"layout"`
}
