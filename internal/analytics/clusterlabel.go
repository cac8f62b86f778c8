package analytics

import (
	"fmt"
	"path/filepath"
	"sort"
)

// ClusterMember is one clustered symbol. IsAnchor marks symbol kinds
// eligible as a cluster's named representative
// (class/struct/interface/enum/trait/module), per spec §4.10's cluster
// labeling rule. Callers supply it since analytics has no dependency on
// internal/model's symbol-kind enum.
type ClusterMember struct {
	SymbolID  int64
	Name      string
	IsAnchor  bool
	Dir       string
	PageRank  float64
}

// ClusterLabel is the computed label plus its supporting stats.
type ClusterLabel struct {
	ClusterID  int
	Label      string
	MemberIDs  []int64
	TopDirs    []string
}

// LabelClusters implements spec §4.10's labeling rule: per cluster, find
// the top directories by member count and the best representative
// (highest-PageRank anchor symbol if any, else highest-PageRank member).
// Label is "<last-dir-segment>/<name>" when both are known. Clusters with
// more than 100 members or more than 40% of all clustered nodes become
// "mega-clusters", labeled by their three dominant directories.
func LabelClusters(members map[int][]ClusterMember) []ClusterLabel {
	totalClustered := 0
	for _, ms := range members {
		totalClustered += len(ms)
	}

	clusterIDs := make([]int, 0, len(members))
	for id := range members {
		clusterIDs = append(clusterIDs, id)
	}
	sort.Ints(clusterIDs)

	var out []ClusterLabel
	for _, id := range clusterIDs {
		ms := members[id]
		memberIDs := make([]int64, len(ms))
		for i, m := range ms {
			memberIDs[i] = m.SymbolID
		}

		dirCounts := make(map[string]int)
		for _, m := range ms {
			dirCounts[m.Dir]++
		}
		topDirs := rankDirs(dirCounts)

		isMega := len(ms) > 100 || (totalClustered > 0 && float64(len(ms))/float64(totalClustered) > 0.4)

		var label string
		if isMega {
			label = megaLabel(topDirs, dirCounts, len(ms))
		} else {
			label = representativeLabel(ms, topDirs)
		}

		out = append(out, ClusterLabel{ClusterID: id, Label: label, MemberIDs: memberIDs, TopDirs: topDirs})
	}
	return out
}

func rankDirs(counts map[string]int) []string {
	dirs := make([]string, 0, len(counts))
	for d := range counts {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool {
		if counts[dirs[i]] != counts[dirs[j]] {
			return counts[dirs[i]] > counts[dirs[j]]
		}
		return dirs[i] < dirs[j]
	})
	return dirs
}

func representativeLabel(ms []ClusterMember, topDirs []string) string {
	best := bestAnchor(ms)
	if best == nil {
		best = bestByPageRank(ms)
	}
	if best == nil {
		return "cluster"
	}
	if len(topDirs) == 0 {
		return best.Name
	}
	return fmt.Sprintf("%s/%s", filepath.Base(topDirs[0]), best.Name)
}

func bestAnchor(ms []ClusterMember) *ClusterMember {
	var best *ClusterMember
	for i := range ms {
		if !ms[i].IsAnchor {
			continue
		}
		if best == nil || ms[i].PageRank > best.PageRank {
			best = &ms[i]
		}
	}
	return best
}

func bestByPageRank(ms []ClusterMember) *ClusterMember {
	if len(ms) == 0 {
		return nil
	}
	best := &ms[0]
	for i := 1; i < len(ms); i++ {
		if ms[i].PageRank > best.PageRank {
			best = &ms[i]
		}
	}
	return best
}

// megaLabel formats "<d1> <p1>% + <d2> <p2>% + <d3> <p3>%" for the three
// dominant directories, per spec §4.10.
func megaLabel(topDirs []string, dirCounts map[string]int, total int) string {
	n := len(topDirs)
	if n > 3 {
		n = 3
	}
	if n == 0 || total == 0 {
		return "mega-cluster"
	}

	label := ""
	for i := 0; i < n; i++ {
		pct := int(round3(float64(dirCounts[topDirs[i]])/float64(total)*100) + 0.5)
		if i > 0 {
			label += " + "
		}
		label += fmt.Sprintf("%s %d%%", filepath.Base(topDirs[i]), pct)
	}
	return label
}
