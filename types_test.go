package fire_test

import "github.com/hupe1980/fire"

type Hit struct {
	X       float64
	Y       float64
	Channel int32
}

func (h *Hit) Describe(s *fire.Schema) {
	fire.Attach(s, "x", &h.X)
	fire.Attach(s, "y", &h.Y)
	fire.Attach(s, "channel", &h.Channel)
}

type Cluster struct {
	Energy float64
	Hits   fire.Vector[Hit]
	Tags   []string
}

func (c *Cluster) Describe(s *fire.Schema) {
	fire.Attach(s, "energy", &c.Energy)
	fire.Attach(s, "hits", &c.Hits)
	fire.Attach(s, "tags", &c.Tags)
}

type Track struct {
	Run      uint32
	Label    string
	Clusters fire.Vector[Cluster]
}

func (t *Track) Describe(s *fire.Schema) {
	fire.Attach(s, "run", &t.Run)
	fire.Attach(s, "label", &t.Label)
	fire.Attach(s, "clusters", &t.Clusters)
}
