package topology

import "github.com/pkg/errors"

// errTopologyUnsatisfiable is returned by Build when NumPeers cannot
// be reached for some node within a bounded number of candidate
// draws — most commonly because NumPeers is too close to N-1.
var errTopologyUnsatisfiable = errors.New("could not satisfy requested peer count within attempt budget")
