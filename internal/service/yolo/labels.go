package yolo

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Labels maps class ids to names.
type Labels []string

// LabelFor returns the name for classID, or unknown_<id> when the id is
// outside the table.
func (l Labels) LabelFor(classID uint16) string {
	if int(classID) < len(l) {
		return l[classID]
	}
	return fmt.Sprintf("unknown_%d", classID)
}

// LoadLabels reads one label per line. Trailing blank lines are dropped;
// blank lines in the middle keep their index.
func LoadLabels(path string) (Labels, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels file: %w", err)
	}
	defer file.Close()

	var labels Labels
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		labels = append(labels, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labels file: %w", err)
	}

	for len(labels) > 0 && labels[len(labels)-1] == "" {
		labels = labels[:len(labels)-1]
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("labels file %s is empty", path)
	}
	return labels, nil
}

// LoadLabelsOrDefault loads the labels file at path, or returns COCO when
// path is empty.
func LoadLabelsOrDefault(path string) (Labels, error) {
	if path == "" {
		return COCO, nil
	}
	return LoadLabels(path)
}

// COCO is the 80-class label list YOLOv5 models are trained on by default.
var COCO = Labels{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat",
	"dog", "horse", "sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack",
	"umbrella", "handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball",
	"kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple",
	"sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair",
	"couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink",
	"refrigerator", "book", "clock", "vase", "scissors", "teddy bear", "hair drier",
	"toothbrush",
}
