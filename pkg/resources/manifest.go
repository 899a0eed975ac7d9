/* Copyright 2025, the ovirt-apply authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package resources

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Document is one desired-state entry in a manifest. State defaults to
// "present" when omitted; the spec node stays raw until the kind decodes it.
type Document struct {
	Kind  string     `yaml:"kind"`
	State string     `yaml:"state"`
	Spec  *yaml.Node `yaml:"spec"`
}

// ParseManifest reads manifest documents from r. Each YAML document in the
// stream may be a single entry or a list of entries; documents keep file
// order.
func ParseManifest(r io.Reader) ([]Document, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var docs []Document
	for {
		var node yaml.Node
		if err := decoder.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}

		var batch []Document
		if node.Kind == yaml.SequenceNode {
			if err := decodeManifestNode(&node, &batch); err != nil {
				return nil, err
			}
		} else {
			var doc Document
			if err := decodeManifestNode(&node, &doc); err != nil {
				return nil, err
			}
			batch = append(batch, doc)
		}
		docs = append(docs, batch...)
	}

	for i := range docs {
		if docs[i].Kind == "" {
			return nil, fmt.Errorf("manifest document %d: kind is required", i+1)
		}
		if docs[i].State == "" {
			docs[i].State = "present"
		}
	}
	return docs, nil
}

func decodeManifestNode(node *yaml.Node, out any) error {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	return unmarshalKnown(raw, out)
}
