package endpoints

// Endpoints groups every endpoint served by the HTTP transport.
type Endpoints struct {
	CrawlEndpoint CrawlEndpoint
}
