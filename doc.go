/*
go-posture evaluates the posture of a single person captured in one camera
frame.  A frame is decoded and normalized, body keypoints are extracted by a
pluggable Extractor (such as a YOLOv8-pose model running on the Rockchip NPU),
joint angles and slopes are measured and a rule set for the selected exercise
or stance produces a verdict, correction tips and a confidence score.

The root package holds the shared data model: joints, landmarks, modes,
verdicts, results and the error taxonomy.  See the pipeline package for the
evaluation boundary and the example subdirectory for usage.
*/
package posture
