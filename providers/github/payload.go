package github

import "encoding/json"

// eventPayload holds the parts of GitHub's event envelopes the templates read.
// Only the objects relevant to the delivered event are present.
type eventPayload struct {
	Action     string      `json:"action"`
	Ref        string      `json:"ref"`
	RefType    string      `json:"ref_type"`
	Repository *repository `json:"repository"`
	Pusher     *struct {
		Name string `json:"name"`
	} `json:"pusher"`
	Commits     []json.RawMessage `json:"commits"`
	Compare     string            `json:"compare"`
	PullRequest *linked           `json:"pull_request"`
	Release     *struct {
		TagName string `json:"tag_name"`
		HTMLURL string `json:"html_url"`
	} `json:"release"`
	Discussion *linked `json:"discussion"`
	Comment    *struct {
		Body     string `json:"body"`
		CommitID string `json:"commit_id"`
		HTMLURL  string `json:"html_url"`
	} `json:"comment"`
	Deployment *struct {
		Environment string `json:"environment"`
	} `json:"deployment"`
	DeploymentStatus *struct {
		State string `json:"state"`
	} `json:"deployment_status"`
	Member *struct {
		Login string `json:"login"`
	} `json:"member"`
}

type repository struct {
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
}

type linked struct {
	Title   string `json:"title"`
	HTMLURL string `json:"html_url"`
}

func (p *eventPayload) repoName() string {
	if p.Repository == nil {
		return ""
	}
	return p.Repository.FullName
}

func (p *eventPayload) repoURL() string {
	if p.Repository == nil {
		return ""
	}
	return p.Repository.HTMLURL
}

func (p *eventPayload) pullRequestTitle() string {
	if p.PullRequest == nil {
		return ""
	}
	return p.PullRequest.Title
}

func (p *eventPayload) pullRequestURL() string {
	if p.PullRequest == nil {
		return ""
	}
	return p.PullRequest.HTMLURL
}

func (p *eventPayload) commentBody() string {
	if p.Comment == nil {
		return ""
	}
	return p.Comment.Body
}

func (p *eventPayload) environment() string {
	if p.Deployment == nil {
		return ""
	}
	return p.Deployment.Environment
}
