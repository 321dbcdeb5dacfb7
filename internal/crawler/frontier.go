package crawler

// entry is one (URL, depth) pair awaiting processing.
type entry struct {
	url   string
	depth int
}

// Frontier is the ordered work queue for a single job: strict FIFO, so all
// depth-d links are discovered before any depth-d+1 link is visited. It is
// owned and mutated by the one goroutine running the job, so it carries no
// lock. Dedup is by exact string equality; no URL normalization is applied.
type Frontier struct {
	queue    []entry
	visited  map[string]bool
	enqueued map[string]bool
	maxDepth int
	maxPages int
	pages    int
}

// NewFrontier creates a frontier with the given depth and page budgets.
func NewFrontier(maxDepth, maxPages int) *Frontier {
	return &Frontier{
		visited:  make(map[string]bool),
		enqueued: make(map[string]bool),
		maxDepth: maxDepth,
		maxPages: maxPages,
	}
}

// Enqueue appends to the tail of the frontier. Entries beyond the depth
// budget are silently dropped.
func (f *Frontier) Enqueue(url string, depth int) {
	if depth > f.maxDepth {
		return
	}
	f.queue = append(f.queue, entry{url: url, depth: depth})
	f.enqueued[url] = true
}

// Pop returns the earliest-enqueued unvisited entry and marks it visited.
// Returns ok=false when the frontier is empty or the page budget is spent.
// Visited membership is checked here, at pop time: duplicate queue entries
// are possible and are skipped over.
func (f *Frontier) Pop() (url string, depth int, ok bool) {
	for len(f.queue) > 0 {
		if f.pages >= f.maxPages {
			return "", 0, false
		}
		head := f.queue[0]
		f.queue = f.queue[1:]
		if f.visited[head.url] {
			continue
		}
		f.visited[head.url] = true
		return head.url, head.depth, true
	}
	return "", 0, false
}

// Seen reports whether a URL has been popped or is already queued.
// Discovery uses this to skip re-admitting known URLs.
func (f *Frontier) Seen(url string) bool {
	return f.visited[url] || f.enqueued[url]
}

// MarkCrawled counts one page against the budget. Called after a page is
// successfully fetched and stored, not on pop, so failed fetches do not
// consume budget.
func (f *Frontier) MarkCrawled() {
	f.pages++
}

// Pages returns the number of pages crawled so far.
func (f *Frontier) Pages() int {
	return f.pages
}

// Exhausted reports whether traversal is done: frontier empty or page
// budget reached.
func (f *Frontier) Exhausted() bool {
	return len(f.queue) == 0 || f.pages >= f.maxPages
}
