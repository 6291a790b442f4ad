package kernel

import (
	"io"
	"testing"
)

func TestOpenInfoReportsBootedProcesses(t *testing.T) {
	k := Boot()
	done := make(chan struct{})

	rootTask := func(self *Thread, argl int, args []byte) int {
		fid, err := k.OpenInfo()
		if err != nil {
			t.Errorf("OpenInfo returned error: %v", err)
			close(done)
			return 1
		}
		defer k.Close(fid)

		var records []ProcInfo
		for {
			info, err := k.ReadInfo(fid)
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Errorf("ReadInfo returned error: %v", err)
				break
			}
			records = append(records, info)
		}

		if len(records) < 2 {
			t.Errorf("got %d records, want at least 2 (idle + self)", len(records))
		}
		if records[0].Pid != 0 {
			t.Errorf("first record pid = %d, want 0", records[0].Pid)
		}
		if records[1].Pid != 1 || !records[1].Alive {
			t.Errorf("second record = %+v, want pid 1, alive", records[1])
		}

		close(done)
		return 0
	}

	if pid := k.Exec(nil, rootTask, 0, nil); pid == NoProc {
		t.Fatalf("Exec returned NoProc")
	}
	<-done
}

func TestReadInfoBadFid(t *testing.T) {
	k := Boot()
	if _, err := k.ReadInfo(NoFile); err != ErrBadFid {
		t.Fatalf("ReadInfo(NoFile) = %v, want ErrBadFid", err)
	}
}
